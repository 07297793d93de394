package model

import "errors"

var (
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrTickerMismatch           = errors.New("ticker mismatch")
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrHoldingNotFound          = errors.New("holding not found")
	ErrInsufficientShares       = errors.New("insufficient shares")
	ErrNoLiability              = errors.New("account has no liability")
	ErrOverpayment              = errors.New("payment exceeds outstanding balance")
)
