package service

import "errors"

// Recoverable user-facing failures. Handlers map these onto reply text; every
// other error is logged and answered with a generic failure message.
var (
	ErrAccessDenied    = errors.New("no active subscription")
	ErrInvalidCode     = errors.New("activation code does not exist")
	ErrCodeAlreadyUsed = errors.New("activation code already used")
	ErrNoActiveTrade   = errors.New("no active trade to report")
	ErrTradePending    = errors.New("a trade is already pending")
)
