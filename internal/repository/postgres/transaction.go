package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bkostadinov/finman/internal/apperrors"
	"github.com/bkostadinov/finman/internal/models"
	"github.com/bkostadinov/finman/internal/repository"
)

type TransactionRepo struct {
	db DBTX
}

// Sortable columns for transaction listings, qualified because the listing
// query joins accounts for owner scoping
var transactionSortColumns = map[string]string{
	"created_at": "t.created_at",
	"amount":     "t.amount",
	"type":       "t.type",
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, account_id, created_at, type, amount, description)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, account_id, created_at, type, amount, description
`

func (r *TransactionRepo) CreateTransaction(ctx context.Context, transaction models.Transaction) (models.Transaction, error) {
	rows, _ := r.db.Query(ctx, createTransaction,
		transaction.ID, transaction.AccountID, transaction.CreatedAt,
		transaction.Type, transaction.Amount, transaction.Description,
	)
	transaction, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return transaction, fmt.Errorf("repo error: %w", apperrors.ErrAccountNotFound)
		}

		return transaction, fmt.Errorf("db error: %w", err)
	}

	return transaction, nil
}

const getTransaction = `-- name: GetTransaction
SELECT t.id, t.account_id, t.created_at, t.type, t.amount, t.description
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE t.id = $1 AND a.user_id = $2
`

// Get transaction scoped to the owner of its account
// A transaction of another user's account is indistinguishable from a
// missing one
func (r *TransactionRepo) GetTransaction(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID) (models.Transaction, error) {
	rows, _ := r.db.Query(ctx, getTransaction, transactionID, userID)
	transaction, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return transaction, nil
	case errors.Is(err, pgx.ErrNoRows):
		return transaction, fmt.Errorf("repo error: %w", apperrors.ErrTransactionNotFound)
	default:
		return transaction, fmt.Errorf("db error: %w", err)
	}
}

const countTransactions = `-- name: CountTransactions
SELECT count(*)
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE a.user_id = $1
  AND ($2::uuid IS NULL OR t.account_id = $2)
  AND ($3 = '' OR t.description ILIKE '%' || $3 || '%')
`

const listTransactions = `-- name: ListTransactions
SELECT t.id, t.account_id, t.created_at, t.type, t.amount, t.description
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE a.user_id = $1
  AND ($2::uuid IS NULL OR t.account_id = $2)
  AND ($3 = '' OR t.description ILIKE '%%' || $3 || '%%')
ORDER BY %s %s, t.id
LIMIT $4 OFFSET $5
`

// List transactions of the owner, all accounts when accountID is uuid.Nil
func (r *TransactionRepo) ListTransactions(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, q repository.Query) (repository.Page[models.Transaction], error) {
	q = q.Normalize()
	var page repository.Page[models.Transaction]

	var accountFilter *uuid.UUID
	if accountID != uuid.Nil {
		accountFilter = &accountID
	}

	err := r.db.QueryRow(ctx, countTransactions, userID, accountFilter, q.Search).Scan(&page.Total)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	query := fmt.Sprintf(listTransactions, sortColumn(transactionSortColumns, q.SortBy), sortDirection(q.Order))
	rows, _ := r.db.Query(ctx, query, userID, accountFilter, q.Search, q.PageSize, q.Offset())
	page.Items, err = pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	return page, nil
}

const hasLaterTransaction = `-- name: HasLaterTransaction
SELECT EXISTS (
	SELECT 1 FROM transactions
	WHERE account_id = $1 AND (created_at, id) > ($2, $3)
)
`

// True if the account recorded any transaction after the given one in the
// ledger order (created_at, then id, same as listings). The check is scoped
// per account: a newer transaction on another account never blocks edits here
func (r *TransactionRepo) HasLaterTransaction(ctx context.Context, accountID uuid.UUID, createdAt time.Time, transactionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, hasLaterTransaction, accountID, createdAt, transactionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

const updateTransaction = `-- name: UpdateTransaction
UPDATE transactions
SET type = $2, amount = $3, description = $4
WHERE id = $1
RETURNING id, account_id, created_at, type, amount, description
`

// Creation time is not updatable, the ledger ordering depends on it
func (r *TransactionRepo) UpdateTransaction(ctx context.Context, transaction models.Transaction) (models.Transaction, error) {
	rows, _ := r.db.Query(ctx, updateTransaction,
		transaction.ID, transaction.Type, transaction.Amount, transaction.Description,
	)
	transaction, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return transaction, nil
	case errors.Is(err, pgx.ErrNoRows):
		return transaction, fmt.Errorf("repo error: %w", apperrors.ErrTransactionNotFound)
	default:
		return transaction, fmt.Errorf("db error: %w", err)
	}
}

const deleteTransaction = `-- name: DeleteTransaction
DELETE FROM transactions
WHERE id = $1
`

func (r *TransactionRepo) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteTransaction, transactionID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrTransactionNotFound)
	}

	return nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.AccountID, &t.CreatedAt, &t.Type, &t.Amount, &t.Description)
	return t, err
}
