package community

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// GetCommunity loads the community with its roster ordered by position.
	GetCommunity(ctx context.Context, communityID string) (*Community, error)
	ListCommunities(ctx context.Context) ([]Community, error)
	CreateCommunity(ctx context.Context, community *Community) error
	// SaveCommunity writes the community only if its stored version still equals
	// community.Version, then bumps the version and replaces the roster.
	// It returns ErrVersionConflict when the stored row moved on.
	SaveCommunity(ctx context.Context, community *Community) error
	GetUserCommunity(ctx context.Context, userID string) (*string, error)
	SetUserCommunity(ctx context.Context, userID string, communityID *string) error
	ListProfiles(ctx context.Context, userIDs []string) (map[string]Profile, error)
}
