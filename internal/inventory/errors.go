package inventory

import "errors"

// Sentinel errors for the mutation and validation layer. Handlers map these
// to HTTP statuses with errors.Is; anything else is a server-side failure.
var (
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInvalidDate       = errors.New("invalid expiry date")
	ErrDuplicateSKU      = errors.New("medicine with this batch/SKU already exists")
	ErrNotFound          = errors.New("medicine not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrExpiredMedicine   = errors.New("cannot sell expired medicine")
)
