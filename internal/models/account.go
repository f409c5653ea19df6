package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AccountTypeChecking = "checking"
	AccountTypeSavings  = "savings"
	AccountTypeCash     = "cash"
)

const (
	CurrencyBGN = "BGN"
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
	CurrencyGBP = "GBP"
)

type Account struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CreatedAt   time.Time
	Name        string
	Currency    string
	AccountType string
	Description string

	// Running balance, always equal to the sum of signed transaction
	// amounts recorded for the account
	Total decimal.Decimal
}
