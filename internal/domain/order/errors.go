package order

import "errors"

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrCommunityNotFound    = errors.New("community not found")
	ErrNoItems              = errors.New("order must contain at least one item")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrArticleRequired      = errors.New("article id is required")
	ErrDeliveryDateRequired = errors.New("delivery date is required")
	ErrPriceNotFound        = errors.New("price not found for article")
)
