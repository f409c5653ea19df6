// Package account implements the account lifecycle: creation with an
// optional opening total, owner scoped reads, descriptive updates and
// deletion. The account total itself is only ever written through
// transaction events, never edited here directly.
package account

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

// Description recorded on the deposit synthesized for a non-zero opening total
const OpeningDepositDescription = "Initial deposit upon account creation"

type Config struct {
	// Clock returns "now" for creation timestamps
	// Defaults to time.Now, injectable for tests
	Clock func() time.Time
}

type AccountService struct {
	storage repository.Storage
	clock   func() time.Time
}

func NewService(cfg Config, storage repository.Storage) *AccountService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &AccountService{
		storage: storage,
		clock:   clock,
	}
}

type CreateInput struct {
	Name         string
	Currency     string
	AccountType  string
	Description  string
	OpeningTotal decimal.Decimal
}

type UpdateInput struct {
	Name        string
	Currency    string
	AccountType string
	Description string
}

// AccountWithTransactions is the read side composition of an account and a
// page of its transactions
type AccountWithTransactions struct {
	Account      models.Account
	Transactions repository.Page[models.Transaction]
}

// Create account owned by the user
// A positive opening total synthesizes one deposit transaction dated at the
// account creation time, so the ledger invariant holds from the start.
// Account and seed transaction are committed as one unit
func (s *AccountService) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (models.Account, error) {
	if err := money.ValidateRange(decimal.Zero, in.OpeningTotal, models.TransactionTypeDeposit); err != nil {
		return models.Account{}, err
	}

	var account models.Account

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		exists, err := store.Account().NameExists(ctx, userID, in.Name, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("account %q: %w", in.Name, apperrors.ErrDuplicateAccountName)
		}

		now := s.clock()
		account, err = store.Account().CreateAccount(ctx, models.Account{
			ID:          uuid.New(),
			UserID:      userID,
			CreatedAt:   now,
			Name:        in.Name,
			Currency:    in.Currency,
			AccountType: in.AccountType,
			Description: in.Description,
			Total:       in.OpeningTotal,
		})
		if err != nil {
			return err
		}

		if in.OpeningTotal.IsPositive() {
			_, err = store.Transaction().CreateTransaction(ctx, models.Transaction{
				ID:          uuid.New(),
				AccountID:   account.ID,
				CreatedAt:   now,
				Type:        models.TransactionTypeDeposit,
				Amount:      in.OpeningTotal,
				Description: OpeningDepositDescription,
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.Account{}, err
	}

	return account, nil
}

// Get account scoped to its owner
func (s *AccountService) Get(ctx context.Context, userID uuid.UUID, accountID uuid.UUID) (models.Account, error) {
	return s.storage.Account().GetAccount(ctx, userID, accountID, false)
}

// List accounts of the owner, searchable by name substring
func (s *AccountService) List(ctx context.Context, userID uuid.UUID, q repository.Query) (repository.Page[models.Account], error) {
	return s.storage.Account().ListAccounts(ctx, userID, q)
}

// GetWithTransactions returns the account and a page of its transactions
func (s *AccountService) GetWithTransactions(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, q repository.Query) (AccountWithTransactions, error) {
	var result AccountWithTransactions

	account, err := s.storage.Account().GetAccount(ctx, userID, accountID, false)
	if err != nil {
		return result, err
	}

	transactions, err := s.storage.Transaction().ListTransactions(ctx, userID, accountID, q)
	if err != nil {
		return result, err
	}

	result.Account = account
	result.Transactions = transactions
	return result, nil
}

// Update descriptive fields of the account (name, currency, type,
// description). Renaming into a name of another account of the same owner
// fails with ErrDuplicateAccountName. The total is never written here
func (s *AccountService) Update(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, in UpdateInput) (models.Account, error) {
	var account models.Account

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		exists, err := store.Account().NameExists(ctx, userID, in.Name, accountID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("account %q: %w", in.Name, apperrors.ErrDuplicateAccountName)
		}

		account, err = store.Account().GetAccount(ctx, userID, accountID, false)
		if err != nil {
			return err
		}

		account.Name = in.Name
		account.Currency = in.Currency
		account.AccountType = in.AccountType
		account.Description = in.Description

		account, err = store.Account().UpdateAccount(ctx, account)
		return err
	})
	if err != nil {
		return models.Account{}, err
	}

	return account, nil
}

// Delete account of the owner together with all its transactions
func (s *AccountService) Delete(ctx context.Context, userID uuid.UUID, accountID uuid.UUID) error {
	return s.storage.Account().DeleteAccount(ctx, userID, accountID)
}
