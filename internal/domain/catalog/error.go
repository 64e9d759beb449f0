package catalog

import "errors"

var (
	ErrNotFound     = errors.New("product not found")
	ErrNameRequired = errors.New("product name is required")
	ErrInvalidPrice = errors.New("product price must be positive")
	ErrInvalidCost  = errors.New("product cost must not be negative")
)
