package domain

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDistributionExpired = errors.New("distribution expired")
	ErrExternalSync        = errors.New("external sync failed")
)
