package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit  = "deposit"
	TransactionTypeWithdraw = "withdraw"
)

type Transaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	CreatedAt   time.Time
	Type        string
	Amount      decimal.Decimal
	Description string
}
