package ledger

import "errors"

var (
	ErrSaleNotFound     = errors.New("sale not found")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrInvalidPayment   = errors.New("unknown payment method")
	ErrCustomerRequired = errors.New("customer name required for credit-tab sales")
	ErrSaleArchived     = errors.New("sale already archived")
	ErrTenantMismatch   = errors.New("product belongs to another tenant")
)
