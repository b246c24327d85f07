package shop

import "errors"

var (
	// ErrUnknownToy is returned when an id does not name a catalog entry.
	ErrUnknownToy = errors.New("toy not found")

	// ErrUnknownCategory is returned when an id does not name a category.
	ErrUnknownCategory = errors.New("category not found")

	// ErrUnknownOrder is returned when an id does not name an order.
	ErrUnknownOrder = errors.New("order not found")

	// ErrDuplicateCategory is returned when a derived category id already exists.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrProtectedCategory is returned on attempts to remove the "all" category.
	ErrProtectedCategory = errors.New("category cannot be removed")
)
