package types

import "errors"

var (
	ErrIPNotFound         = errors.New("saved ip not found")
	ErrIntervalOutOfRange = errors.New("interval out of range")
	ErrInvalidChannelID   = errors.New("invalid channel id")
	ErrMissingToken       = errors.New("bot token is required")
	ErrInvalidBackend     = errors.New("invalid store backend")
	ErrFetchFailed        = errors.New("public ip fetch failed")
)
