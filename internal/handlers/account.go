package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bkostadinov/finman/internal/apperrors"
	"github.com/bkostadinov/finman/internal/handlers/render"
	"github.com/bkostadinov/finman/internal/handlers/userctx"
	"github.com/bkostadinov/finman/internal/logger"
	"github.com/bkostadinov/finman/internal/models"
	"github.com/bkostadinov/finman/internal/money"
	"github.com/bkostadinov/finman/internal/service/account"
)

type accountResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Currency    string          `json:"currency"`
	AccountType string          `json:"account_type"`
	Description string          `json:"description,omitempty"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   string          `json:"created_at"`
}

func toAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Name:        a.Name,
		Currency:    a.Currency,
		AccountType: a.AccountType,
		Description: a.Description,
		Total:       a.Total,
		CreatedAt:   a.CreatedAt.Format(dateLayout),
	}
}

func handleCreateAccount(accountService accountService, l logger.Logger) http.Handler {
	type request struct {
		Name        string `json:"name" validate:"required,min=1,max=30"`
		Currency    string `json:"currency" validate:"required,oneof=BGN EUR USD GBP"`
		AccountType string `json:"account_type" validate:"required,oneof=checking savings cash"`
		Description string `json:"description" validate:"max=100"`
		Total       string `json:"total"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		openingTotal := decimal.Zero
		if data.Total != "" {
			openingTotal, err = money.ParseAmount(data.Total)
			if err != nil {
				render.DomainError(w, "total", "Must be a non-negative decimal with up to 4 decimal places")
				return
			}
		}

		created, err := accountService.Create(r.Context(), user.ID, account.CreateInput{
			Name:         data.Name,
			Currency:     data.Currency,
			AccountType:  data.AccountType,
			Description:  data.Description,
			OpeningTotal: openingTotal,
		})

		switch {
		case err == nil:
			render.JSONWithStatus(w, toAccountResponse(created), http.StatusCreated)
		case errors.Is(err, apperrors.ErrDuplicateAccountName):
			render.DomainError(w, "DuplicateName", "Account with the same name already exists")
		case errors.Is(err, apperrors.ErrAccountTotalMaxValue):
			render.DomainError(w, "AccountTotalMaxValue", "Opening total exceeds the account total limit")
		default:
			l.Error("Failed to create account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListAccounts(accountService accountService, l logger.Logger) http.Handler {
	type response struct {
		Total    int64             `json:"total"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
		Items    []accountResponse `json:"items"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		q := queryFromRequest(r).Normalize()

		page, err := accountService.List(r.Context(), user.ID, q)
		if err != nil {
			l.Error("Failed to list accounts", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		items := make([]accountResponse, 0, len(page.Items))
		for _, a := range page.Items {
			items = append(items, toAccountResponse(a))
		}

		render.JSON(w, response{
			Total:    page.Total,
			Page:     q.Page,
			PageSize: q.PageSize,
			Items:    items,
		})
	})
}

func handleGetAccount(accountService accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		accountID, ok := idFromRequest(r)
		if !ok {
			render.NotFound(w)
			return
		}

		acc, err := accountService.Get(r.Context(), user.ID, accountID)

		switch {
		case err == nil:
			render.JSON(w, toAccountResponse(acc))
		case errors.Is(err, apperrors.ErrAccountNotFound):
			render.NotFound(w)
		default:
			l.Error("Failed to get account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListAccountTransactions(accountService accountService, l logger.Logger) http.Handler {
	type response struct {
		Account  accountResponse       `json:"account"`
		Total    int64                 `json:"total"`
		Page     int                   `json:"page"`
		PageSize int                   `json:"page_size"`
		Items    []transactionResponse `json:"items"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		accountID, ok := idFromRequest(r)
		if !ok {
			render.NotFound(w)
			return
		}

		q := queryFromRequest(r).Normalize()

		result, err := accountService.GetWithTransactions(r.Context(), user.ID, accountID, q)

		switch {
		case err == nil:
			items := make([]transactionResponse, 0, len(result.Transactions.Items))
			for _, t := range result.Transactions.Items {
				items = append(items, toTransactionResponse(t))
			}
			render.JSON(w, response{
				Account:  toAccountResponse(result.Account),
				Total:    result.Transactions.Total,
				Page:     q.Page,
				PageSize: q.PageSize,
				Items:    items,
			})
		case errors.Is(err, apperrors.ErrAccountNotFound):
			render.NotFound(w)
		default:
			l.Error("Failed to list account transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdateAccount(accountService accountService, l logger.Logger) http.Handler {
	type request struct {
		Name        string `json:"name" validate:"required,min=1,max=30"`
		Currency    string `json:"currency" validate:"required,oneof=BGN EUR USD GBP"`
		AccountType string `json:"account_type" validate:"required,oneof=checking savings cash"`
		Description string `json:"description" validate:"max=100"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		accountID, ok := idFromRequest(r)
		if !ok {
			render.NotFound(w)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := accountService.Update(r.Context(), user.ID, accountID, account.UpdateInput{
			Name:        data.Name,
			Currency:    data.Currency,
			AccountType: data.AccountType,
			Description: data.Description,
		})

		switch {
		case err == nil:
			render.JSON(w, toAccountResponse(updated))
		case errors.Is(err, apperrors.ErrAccountNotFound):
			render.NotFound(w)
		case errors.Is(err, apperrors.ErrDuplicateAccountName):
			render.DomainError(w, "DuplicateName", "Account with the same name already exists")
		default:
			l.Error("Failed to update account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteAccount(accountService accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		accountID, ok := idFromRequest(r)
		if !ok {
			render.NotFound(w)
			return
		}

		err := accountService.Delete(r.Context(), user.ID, accountID)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrAccountNotFound):
			render.NotFound(w)
		default:
			l.Error("Failed to delete account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
