package community

import "errors"

var (
	ErrCommunityNotFound         = errors.New("community not found")
	ErrUserNotFound              = errors.New("user not found")
	ErrAlreadyMember             = errors.New("already a member of this community")
	ErrAlreadyInAnotherCommunity = errors.New("already a member of another community")
	ErrNotMember                 = errors.New("not a member of this community")
	ErrVersionConflict           = errors.New("community was modified concurrently")
	ErrNameRequired              = errors.New("name is required")
	ErrInvalidLocation           = errors.New("invalid location")
	ErrInvalidDeliveryTime       = errors.New("invalid delivery time")
	ErrInvalidDeliveryDay        = errors.New("invalid delivery day")
)
