package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bkostadinov/finman/internal/models"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Query describes a paginated, sortable, searchable listing. SortBy is
// checked against a per-repository whitelist, unknown fields fall back to
// creation time. Search filters by substring, the matched column depends on
// the repository (account name, transaction description).
type Query struct {
	Search   string
	SortBy   string
	Order    string
	Page     int
	PageSize int
}

// Normalize fills defaults and clamps the page window
func (q Query) Normalize() Query {
	if q.Order != OrderAsc {
		q.Order = OrderDesc
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// Offset of the first item of the requested page
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page of items together with the total number of matches
type Page[T any] struct {
	Total int64
	Items []T
}

type UserRepo interface {
	// Create user
	// If user with username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

type RefreshTokenRepo interface {
	// Save token as issued
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the token if it exists, used or expired ones included
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Mark token as used
	// Must not overwrite 'used_at' of an already used token, has to return
	// apperrors.ErrRefreshTokenIsUsed for it instead
	MarkUsed(ctx context.Context, tokenString string) (usedAt time.Time, err error)
}

type AccountRepo interface {
	// Create account row as provided
	// Duplicate (user, name) pair has to return apperrors.ErrDuplicateAccountName
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)

	// Get account by id scoped to its owner
	// Missing and not-owned are both apperrors.ErrAccountNotFound.
	// forUpdate locks the account row until the surrounding transaction ends,
	// serializing balance mutations per account
	GetAccount(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, forUpdate bool) (models.Account, error)

	// List accounts of the owner, Query.Search matches the name substring
	ListAccounts(ctx context.Context, userID uuid.UUID, q Query) (Page[models.Account], error)

	// True if the owner has an account with this exact name, skipping excludeID
	NameExists(ctx context.Context, userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)

	// Overwrite descriptive fields (name, currency, type, description)
	UpdateAccount(ctx context.Context, account models.Account) (models.Account, error)

	// Persist a new total for the account
	UpdateAccountTotal(ctx context.Context, accountID uuid.UUID, total decimal.Decimal) error

	// Delete account and, via cascade, its transactions
	DeleteAccount(ctx context.Context, userID uuid.UUID, accountID uuid.UUID) error
}

type TransactionRepo interface {
	// Insert transaction row as provided
	CreateTransaction(ctx context.Context, transaction models.Transaction) (models.Transaction, error)

	// Get transaction by id scoped to the owner of its account
	// Missing and not-owned are both apperrors.ErrTransactionNotFound
	GetTransaction(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID) (models.Transaction, error)

	// List transactions across all accounts of the owner, or of a single
	// account when accountID is not uuid.Nil. Query.Search matches the
	// description substring
	ListTransactions(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, q Query) (Page[models.Transaction], error)

	// True if the account has any transaction after the given one in ledger
	// order (created_at, then id). Drives the latest-transaction edit window
	HasLaterTransaction(ctx context.Context, accountID uuid.UUID, createdAt time.Time, transactionID uuid.UUID) (bool, error)

	// Overwrite type, amount and description; creation time never changes
	UpdateTransaction(ctx context.Context, transaction models.Transaction) (models.Transaction, error)

	DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error
}

// Storage aggregates the repositories over one database handle
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Account() AccountRepo
	Transaction() TransactionRepo

	// InTx runs fn against a Storage bound to a single database transaction.
	// Commits if fn returns nil, rolls back otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
