package community

import (
	"context"
	"time"
)

// Cache holds resolved community reads keyed by community id.
// Set must not replace an entry whose Community.Version is higher than the
// one given. Implementations treat backend failures as misses.
type Cache interface {
	Get(ctx context.Context, communityID string) (*Details, bool)
	Set(ctx context.Context, communityID string, details *Details, ttl time.Duration)
	Delete(ctx context.Context, communityID string)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*Details, bool) {
	return nil, false
}

func (noopCache) Set(context.Context, string, *Details, time.Duration) {}

func (noopCache) Delete(context.Context, string) {}
