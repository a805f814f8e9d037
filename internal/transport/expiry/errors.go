package expiry

import "errors"

var (
	ErrNoRedemptions = errors.New("no expired redemptions")
)
