package domain

import (
	"errors"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	// ErrConflict таймаут ожидания блокировки, дедлок или ошибка сериализации. Единственная ошибка, при
	// которой операцию можно повторить целиком.
	ErrConflict = errors.New("concurrent update conflict, try again")

	ErrNotEnoughBalance  = errors.New("not enough balance")
	ErrRewardInactive    = errors.New("reward is not active")
	ErrRewardExpired     = errors.New("reward is expired")
	ErrOutOfStock        = errors.New("reward is out of stock")
	ErrLimitReached      = errors.New("redemption limit per user reached")
	ErrInvalidState      = errors.New("redemption is not pending")
	ErrDeadlineExpired   = errors.New("cancellation window is over")
	ErrRedemptionExpired = errors.New("redemption is expired")
	ErrInvalidAmount     = errors.New("amount must be positive")
)
