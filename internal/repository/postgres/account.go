package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/bkostadinov/finman/internal/apperrors"
	"github.com/bkostadinov/finman/internal/models"
	"github.com/bkostadinov/finman/internal/repository"
)

type AccountRepo struct {
	db DBTX
}

// Sortable columns for account listings
// Anything else falls back to creation time
var accountSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"total":      "total",
}

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (id, user_id, created_at, name, currency, account_type, description, total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, user_id, created_at, name, currency, account_type, description, total
`

func (r *AccountRepo) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	rows, _ := r.db.Query(ctx, createAccount,
		account.ID, account.UserID, account.CreatedAt,
		account.Name, account.Currency, account.AccountType, account.Description, account.Total,
	)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, fmt.Errorf("repo error: %w", apperrors.ErrDuplicateAccountName)
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const getAccount = `-- name: GetAccount
SELECT id, user_id, created_at, name, currency, account_type, description, total
FROM accounts
WHERE id = $1 AND user_id = $2
`

// Get account scoped to its owner
// With forUpdate the row stays locked until the surrounding transaction
// ends, which serializes balance mutations per account
func (r *AccountRepo) GetAccount(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, forUpdate bool) (models.Account, error) {
	query := getAccount
	if forUpdate {
		query += "FOR UPDATE\n"
	}

	rows, _ := r.db.Query(ctx, query, accountID, userID)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, fmt.Errorf("repo error: %w", apperrors.ErrAccountNotFound)
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

const countAccounts = `-- name: CountAccounts
SELECT count(*) FROM accounts
WHERE user_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%')
`

const listAccounts = `-- name: ListAccounts
SELECT id, user_id, created_at, name, currency, account_type, description, total
FROM accounts
WHERE user_id = $1 AND ($2 = '' OR name ILIKE '%%' || $2 || '%%')
ORDER BY %s %s, id
LIMIT $3 OFFSET $4
`

func (r *AccountRepo) ListAccounts(ctx context.Context, userID uuid.UUID, q repository.Query) (repository.Page[models.Account], error) {
	q = q.Normalize()
	var page repository.Page[models.Account]

	err := r.db.QueryRow(ctx, countAccounts, userID, q.Search).Scan(&page.Total)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	query := fmt.Sprintf(listAccounts, sortColumn(accountSortColumns, q.SortBy), sortDirection(q.Order))
	rows, _ := r.db.Query(ctx, query, userID, q.Search, q.PageSize, q.Offset())
	page.Items, err = pgx.CollectRows(rows, rowToAccount)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	return page, nil
}

const accountNameExists = `-- name: AccountNameExists
SELECT EXISTS (
	SELECT 1 FROM accounts
	WHERE user_id = $1 AND name = $2 AND id <> $3
)
`

func (r *AccountRepo) NameExists(ctx context.Context, userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, accountNameExists, userID, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

const updateAccount = `-- name: UpdateAccount
UPDATE accounts
SET name = $3, currency = $4, account_type = $5, description = $6
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, created_at, name, currency, account_type, description, total
`

// Overwrite descriptive fields only, the total is touched exclusively by
// UpdateAccountTotal
func (r *AccountRepo) UpdateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	rows, _ := r.db.Query(ctx, updateAccount,
		account.ID, account.UserID,
		account.Name, account.Currency, account.AccountType, account.Description,
	)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, fmt.Errorf("repo error: %w", apperrors.ErrAccountNotFound)
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, fmt.Errorf("repo error: %w", apperrors.ErrDuplicateAccountName)
		}
		return account, fmt.Errorf("db error: %w", err)
	}
}

const updateAccountTotal = `-- name: UpdateAccountTotal
UPDATE accounts
SET total = $2
WHERE id = $1
`

func (r *AccountRepo) UpdateAccountTotal(ctx context.Context, accountID uuid.UUID, total decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, updateAccountTotal, accountID, total)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrAccountNotFound)
	}

	return nil
}

const deleteAccount = `-- name: DeleteAccount
DELETE FROM accounts
WHERE id = $1 AND user_id = $2
`

// Transactions of the account go away with it via FK cascade
func (r *AccountRepo) DeleteAccount(ctx context.Context, userID uuid.UUID, accountID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteAccount, accountID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrAccountNotFound)
	}

	return nil
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.UserID, &a.CreatedAt, &a.Name, &a.Currency, &a.AccountType, &a.Description, &a.Total)
	return a, err
}

func sortColumn(allowed map[string]string, sortBy string) string {
	if col, ok := allowed[sortBy]; ok {
		return col
	}
	return "created_at"
}

func sortDirection(order string) string {
	if order == repository.OrderAsc {
		return "ASC"
	}
	return "DESC"
}
