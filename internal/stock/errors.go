package stock

import "errors"

var (
	// ErrInsufficientStock means an outbound movement would drive quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
)
