package service

import (
	"errors"
	"fmt"
)

// Op names a cart mutation.
type Op string

const (
	OpAddProduct    Op = "add_product"
	OpRemoveProduct Op = "remove_product"
	OpUpdateAmount  Op = "update_product_amount"
)

// Every failed mutation wraps exactly one of these.
var (
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
	ErrUpstream          = errors.New("catalog request failed")
	ErrStorage           = errors.New("cart storage failed")
)

// ErrCorruptCart is returned at startup when the persisted blob cannot be decoded.
var ErrCorruptCart = errors.New("persisted cart is corrupt")

// OpError reports which operation failed on which product.
// The operation is the one that actually failed: an add that delegates to an
// amount update reports OpUpdateAmount.
type OpError struct {
	Op        Op
	ProductID int64
	Err       error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s product %d: %v", e.Op, e.ProductID, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func upstream(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
