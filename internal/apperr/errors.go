package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidTrigger = errors.New("invalid trigger")
	ErrInvalidProfile = errors.New("invalid profile")
)
