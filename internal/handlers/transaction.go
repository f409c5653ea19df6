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
	"github.com/bkostadinov/finman/internal/service/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

func toTransactionResponse(t models.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(dateLayout),
	}
}

// transactionRequest is shared by create and update: both carry the full
// new state of the transaction
type transactionRequest struct {
	AccountID   uuid.UUID `json:"account_id" validate:"required"`
	Type        string    `json:"type" validate:"required,oneof=deposit withdraw"`
	Amount      string    `json:"amount" validate:"required"`
	Description string    `json:"description" validate:"max=100"`
}

func handleCreateTransaction(transactionService transactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[transactionRequest](w, r)
		if err != nil {
			return
		}

		amount, err := money.ParseAmount(data.Amount)
		if err != nil {
			render.DomainError(w, "amount", "Must be a non-negative decimal with up to 4 decimal places")
			return
		}

		created, err := transactionService.Create(r.Context(), user.ID, transaction.CreateInput{
			AccountID:   data.AccountID,
			Type:        data.Type,
			Amount:      amount,
			Description: data.Description,
		})

		switch {
		case err == nil:
			render.JSONWithStatus(w, toTransactionResponse(created), http.StatusCreated)
		case errors.Is(err, apperrors.ErrAccountNotFound):
			render.DomainError(w, "AccountId", "Account does not exist")
		case errors.Is(err, apperrors.ErrAccountTotalMinValue):
			render.DomainError(w, "AccountTotalMinValue", "Withdraw amount is higher than the current account total")
		case errors.Is(err, apperrors.ErrAccountTotalMaxValue):
			render.DomainError(w, "AccountTotalMaxValue", "Deposit amount would exceed the account total limit")
		default:
			l.Error("Failed to create transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListTransactions(transactionService transactionService, l logger.Logger) http.Handler {
	type response struct {
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

		q := queryFromRequest(r).Normalize()

		page, err := transactionService.List(r.Context(), user.ID, q)
		if err != nil {
			l.Error("Failed to list transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		items := make([]transactionResponse, 0, len(page.Items))
		for _, t := range page.Items {
			items = append(items, toTransactionResponse(t))
		}

		render.JSON(w, response{
			Total:    page.Total,
			Page:     q.Page,
			PageSize: q.PageSize,
			Items:    items,
		})
	})
}

func handleGetTransaction(transactionService transactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		transactionID, ok := idFromRequest(r)
		if !ok {
			render.NotFound(w)
			return
		}

		tr, err := transactionService.Get(r.Context(), user.ID, transactionID)

		switch {
		case err == nil:
			render.JSON(w, toTransactionResponse(tr))
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			render.NotFound(w)
		default:
			l.Error("Failed to get transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdateTransaction(transactionService transactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		transactionID, ok := idFromRequest(r)
		if !ok {
			render.NotFound(w)
			return
		}

		data, err := render.BindAndValidate[transactionRequest](w, r)
		if err != nil {
			return
		}

		amount, err := money.ParseAmount(data.Amount)
		if err != nil {
			render.DomainError(w, "amount", "Must be a non-negative decimal with up to 4 decimal places")
			return
		}

		updated, err := transactionService.Update(r.Context(), user.ID, transactionID, transaction.UpdateInput{
			AccountID:   data.AccountID,
			Type:        data.Type,
			Amount:      amount,
			Description: data.Description,
		})

		switch {
		case err == nil:
			render.JSON(w, toTransactionResponse(updated))
		case errors.Is(err, apperrors.ErrTransactionNotFound),
			errors.Is(err, apperrors.ErrAccountNotFound):
			render.NotFound(w)
		case errors.Is(err, apperrors.ErrForbiddenTransactionEdit):
			render.DomainError(w, "ForbiddenTransactionEdit", "Only the latest transaction can be edited")
		case errors.Is(err, apperrors.ErrAccountTotalMinValue):
			render.DomainError(w, "AccountTotalMinValue", "Withdraw amount is higher than the current account total")
		case errors.Is(err, apperrors.ErrAccountTotalMaxValue):
			render.DomainError(w, "AccountTotalMaxValue", "Deposit amount would exceed the account total limit")
		default:
			l.Error("Failed to update transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteTransaction(transactionService transactionService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		transactionID, ok := idFromRequest(r)
		if !ok {
			render.NotFound(w)
			return
		}

		err := transactionService.Delete(r.Context(), user.ID, transactionID)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrTransactionNotFound),
			errors.Is(err, apperrors.ErrAccountNotFound):
			render.NotFound(w)
		case errors.Is(err, apperrors.ErrForbiddenTransactionDeletion):
			render.DomainError(w, "ForbiddenTransactionDeletion", "Only the latest transaction can be deleted")
		default:
			l.Error("Failed to delete transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
