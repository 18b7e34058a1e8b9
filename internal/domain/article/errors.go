package article

import "errors"

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrNameRequired    = errors.New("name is required")
	ErrInvalidPrice    = errors.New("price must be zero or positive")
	ErrInvalidUnit     = errors.New("invalid unit")
	ErrInvalidCategory = errors.New("invalid category")
)
