package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	// Account referenced by a transaction operation does not exist or is
	// not owned by the caller
	ErrAccountNotFound = errors.New("account not found")

	// Caller already owns an account with the requested name
	ErrDuplicateAccountName = errors.New("account name already exists")

	ErrTransactionNotFound = errors.New("transaction not found")

	// A withdraw would drive the account total below zero
	ErrAccountTotalMinValue = errors.New("withdraw amount is higher than the current account total")

	// A deposit would drive the account total above the representable maximum
	ErrAccountTotalMaxValue = errors.New("deposit amount would exceed the account total limit")

	// Only the most recently created transaction of an account may be mutated
	ErrForbiddenTransactionEdit     = errors.New("only the latest transaction can be edited")
	ErrForbiddenTransactionDeletion = errors.New("only the latest transaction can be deleted")
)
