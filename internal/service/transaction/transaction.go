// Package transaction implements the ledger core: every create, update and
// delete keeps the owning account's total equal to the sum of signed
// transaction amounts, and only the most recently created transaction of an
// account may be changed or removed.
//
// All mutations run in one database transaction with the account row locked
// first, so the latest-check, the range validation and the balance write
// cannot interleave with a concurrent mutation of the same account.
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bkostadinov/finman/internal/apperrors"
	"github.com/bkostadinov/finman/internal/models"
	"github.com/bkostadinov/finman/internal/money"
	"github.com/bkostadinov/finman/internal/repository"
)

type Config struct {
	// Clock returns "now" for creation timestamps
	// Defaults to time.Now, injectable for tests
	Clock func() time.Time
}

type TransactionService struct {
	storage repository.Storage
	clock   func() time.Time
}

func NewService(cfg Config, storage repository.Storage) *TransactionService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &TransactionService{
		storage: storage,
		clock:   clock,
	}
}

type CreateInput struct {
	AccountID   uuid.UUID
	Type        string
	Amount      decimal.Decimal
	Description string
}

type UpdateInput struct {
	AccountID   uuid.UUID
	Type        string
	Amount      decimal.Decimal
	Description string
}

// Create records a transaction against an account of the caller and moves
// the account total by the signed amount. Row and total are committed as
// one unit or not at all
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (models.Transaction, error) {
	var created models.Transaction

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		account, err := store.Account().GetAccount(ctx, userID, in.AccountID, true)
		if err != nil {
			return err
		}

		if err := money.ValidateRange(account.Total, in.Amount, in.Type); err != nil {
			return err
		}

		created, err = store.Transaction().CreateTransaction(ctx, models.Transaction{
			ID:          uuid.New(),
			AccountID:   account.ID,
			CreatedAt:   s.clock(),
			Type:        in.Type,
			Amount:      in.Amount,
			Description: in.Description,
		})
		if err != nil {
			return err
		}

		total := money.ApplyDelta(account.Total, in.Amount, in.Type)
		return store.Account().UpdateAccountTotal(ctx, account.ID, total)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	return created, nil
}

// Update replaces type, amount and description of the latest transaction of
// an account and adjusts the account total by the difference of the old and
// new effect. Older transactions are immutable. Either both the transaction
// and the account reflect the new state or neither does
func (s *TransactionService) Update(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID, in UpdateInput) (models.Transaction, error) {
	var updated models.Transaction

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		transaction, err := store.Transaction().GetTransaction(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		if transaction.AccountID != in.AccountID {
			return fmt.Errorf("transaction account mismatch: %w", apperrors.ErrTransactionNotFound)
		}

		// Lock the account before the latest-check so a concurrent create
		// on the same account can't slip in between
		account, err := store.Account().GetAccount(ctx, userID, transaction.AccountID, true)
		if err != nil {
			return err
		}

		// The first read ran before the lock was granted, so a concurrent
		// mutation may have committed while waiting for it. Re-read under
		// the lock and revert the effect that is actually persisted
		transaction, err = store.Transaction().GetTransaction(ctx, userID, transactionID)
		if err != nil {
			return err
		}

		later, err := store.Transaction().HasLaterTransaction(ctx, transaction.AccountID, transaction.CreatedAt, transaction.ID)
		if err != nil {
			return err
		}
		if later {
			return apperrors.ErrForbiddenTransactionEdit
		}

		// Revert the old effect in memory and validate the new one against
		// the reverted total. On failure the whole transaction rolls back,
		// so the reverted total is never observable
		reverted := money.ApplyDelta(account.Total, transaction.Amount, money.Inverse(transaction.Type))
		if err := money.ValidateRange(reverted, in.Amount, in.Type); err != nil {
			return err
		}

		transaction.Type = in.Type
		transaction.Amount = in.Amount
		transaction.Description = in.Description

		updated, err = store.Transaction().UpdateTransaction(ctx, transaction)
		if err != nil {
			return err
		}

		total := money.ApplyDelta(reverted, in.Amount, in.Type)
		return store.Account().UpdateAccountTotal(ctx, account.ID, total)
	})
	if err != nil {
		return models.Transaction{}, err
	}

	return updated, nil
}

// Delete removes the latest transaction of an account and reverts its
// effect on the account total
func (s *TransactionService) Delete(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID) error {
	return s.storage.InTx(ctx, func(store repository.Storage) error {
		transaction, err := store.Transaction().GetTransaction(ctx, userID, transactionID)
		if err != nil {
			return err
		}

		account, err := store.Account().GetAccount(ctx, userID, transaction.AccountID, true)
		if err != nil {
			return err
		}

		// Same re-read as in Update: the row may have changed while waiting
		// for the account lock
		transaction, err = store.Transaction().GetTransaction(ctx, userID, transactionID)
		if err != nil {
			return err
		}

		later, err := store.Transaction().HasLaterTransaction(ctx, transaction.AccountID, transaction.CreatedAt, transaction.ID)
		if err != nil {
			return err
		}
		if later {
			return apperrors.ErrForbiddenTransactionDeletion
		}

		if err := store.Transaction().DeleteTransaction(ctx, transaction.ID); err != nil {
			return err
		}

		total := money.ApplyDelta(account.Total, transaction.Amount, money.Inverse(transaction.Type))
		return store.Account().UpdateAccountTotal(ctx, account.ID, total)
	})
}

// Get transaction scoped to the owner of its account
func (s *TransactionService) Get(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID) (models.Transaction, error) {
	return s.storage.Transaction().GetTransaction(ctx, userID, transactionID)
}

// List transactions across all accounts of the caller, searchable by
// description substring
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, q repository.Query) (repository.Page[models.Transaction], error) {
	return s.storage.Transaction().ListTransactions(ctx, userID, uuid.Nil, q)
}
