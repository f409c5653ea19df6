// Package money holds the arithmetic core of the ledger: the range check
// that has to pass before any balance mutation and the mutation itself.
// Everything here is pure, amounts are exact decimals with scale 4.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bkostadinov/finman/internal/apperrors"
	"github.com/bkostadinov/finman/internal/models"
)

// Scale is the fixed-point scale every stored amount is kept at
const Scale = 4

// MaxTotal is the highest account total the store can represent, NUMERIC(19,4)
var MaxTotal = decimal.RequireFromString("999999999999999.9999")

// ValidateRange reports whether applying a transaction of the given type and
// amount keeps the account total inside [0, MaxTotal]. Boundaries are
// inclusive on both ends, so a zero amount never fails.
// It has no side effects and must be called before ApplyDelta.
func ValidateRange(total decimal.Decimal, amount decimal.Decimal, transactionType string) error {
	switch transactionType {
	case models.TransactionTypeDeposit:
		if total.Add(amount).GreaterThan(MaxTotal) {
			return apperrors.ErrAccountTotalMaxValue
		}
	case models.TransactionTypeWithdraw:
		if total.Sub(amount).IsNegative() {
			return apperrors.ErrAccountTotalMinValue
		}
	default:
		return fmt.Errorf("unknown transaction type %q", transactionType)
	}

	return nil
}

// ApplyDelta returns the account total after a transaction of the given type
// and amount: +amount for deposit, -amount for withdraw. No validation
// happens here, callers run ValidateRange first. Applying a deposit and then
// a withdraw of the same amount restores the exact original value.
func ApplyDelta(total decimal.Decimal, amount decimal.Decimal, transactionType string) decimal.Decimal {
	if transactionType == models.TransactionTypeWithdraw {
		return total.Sub(amount)
	}
	return total.Add(amount)
}

// Inverse returns the transaction type that undoes the given one
func Inverse(transactionType string) string {
	if transactionType == models.TransactionTypeDeposit {
		return models.TransactionTypeWithdraw
	}
	return models.TransactionTypeDeposit
}

// ParseAmount parses a transaction amount or opening total from its string
// form. The value must be a non-negative decimal with at most Scale
// fractional digits and must not exceed MaxTotal.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a decimal number: %w", err)
	}

	switch {
	case d.IsNegative():
		return decimal.Decimal{}, errors.New("amount must not be negative")
	case d.Exponent() < -Scale:
		return decimal.Decimal{}, fmt.Errorf("amount must have at most %d decimal places", Scale)
	case d.GreaterThan(MaxTotal):
		return decimal.Decimal{}, fmt.Errorf("amount must not exceed %s", MaxTotal)
	}

	return d, nil
}
