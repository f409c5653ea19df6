package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/bkostadinov/finman/internal/handlers/middleware"
	"github.com/bkostadinov/finman/internal/logger"
	"github.com/bkostadinov/finman/internal/models"
	"github.com/bkostadinov/finman/internal/repository"
	"github.com/bkostadinov/finman/internal/service/account"
	"github.com/bkostadinov/finman/internal/service/transaction"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	accountService accountService,
	transactionService transactionService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	apiuser := http.NewServeMux()
	apiuser.Handle("POST /register", handleRegister(authService, logger))
	apiuser.Handle("POST /login", handleLogin(authService, logger))
	apiuser.Handle("POST /refresh", handleTokenRefresh(authService, logger))
	apiuser.Handle("GET /me", withAuth(handleUserMe()))

	root := http.NewServeMux()
	root.Handle("/api/user/", http.StripPrefix("/api/user", apiuser))

	root.Handle("POST /api/accounts", withAuth(handleCreateAccount(accountService, logger)))
	root.Handle("GET /api/accounts", withAuth(handleListAccounts(accountService, logger)))
	root.Handle("GET /api/accounts/{id}", withAuth(handleGetAccount(accountService, logger)))
	root.Handle("GET /api/accounts/{id}/transactions", withAuth(handleListAccountTransactions(accountService, logger)))
	root.Handle("PUT /api/accounts/{id}", withAuth(handleUpdateAccount(accountService, logger)))
	root.Handle("DELETE /api/accounts/{id}", withAuth(handleDeleteAccount(accountService, logger)))

	root.Handle("POST /api/transactions", withAuth(handleCreateTransaction(transactionService, logger)))
	root.Handle("GET /api/transactions", withAuth(handleListTransactions(transactionService, logger)))
	root.Handle("GET /api/transactions/{id}", withAuth(handleGetTransaction(transactionService, logger)))
	root.Handle("PUT /api/transactions/{id}", withAuth(handleUpdateTransaction(transactionService, logger)))
	root.Handle("DELETE /api/transactions/{id}", withAuth(handleDeleteTransaction(transactionService, logger)))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Login user with username and password
	// Has to return apperrors.ErrUserNotFound if user not found
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error)

	// Set auth tokens (access, refresh) to response
	SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair)

	// Get refresh token from request
	GetRefreshString(r *http.Request) (string, error)

	// Get request and return user if it authenticated or error
	GetUserFromRequest(ctx context.Context, r *http.Request) (models.User, error)
}

type accountService interface {
	Create(ctx context.Context, userID uuid.UUID, in account.CreateInput) (models.Account, error)
	Get(ctx context.Context, userID uuid.UUID, accountID uuid.UUID) (models.Account, error)
	List(ctx context.Context, userID uuid.UUID, q repository.Query) (repository.Page[models.Account], error)
	GetWithTransactions(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, q repository.Query) (account.AccountWithTransactions, error)
	Update(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, in account.UpdateInput) (models.Account, error)
	Delete(ctx context.Context, userID uuid.UUID, accountID uuid.UUID) error
}

type transactionService interface {
	Create(ctx context.Context, userID uuid.UUID, in transaction.CreateInput) (models.Transaction, error)
	Get(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID) (models.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, q repository.Query) (repository.Page[models.Transaction], error)
	Update(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID, in transaction.UpdateInput) (models.Transaction, error)
	Delete(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID) error
}
