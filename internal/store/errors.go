package store

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotOwner is returned when a user mutates a row owned by someone else.
	ErrNotOwner = errors.New("record not owned by user")

	// ErrEmptyCart is returned by checkout when the cart holds no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInsufficientStock is returned by checkout when a purchased
	// quantity exceeds the remaining product stock.
	ErrInsufficientStock = errors.New("insufficient product stock")

	// ErrSlugExists is returned when a category slug is already taken.
	ErrSlugExists = errors.New("category slug already exists")
)
