package inmemory

import (
	"context"
	"sync"
	"time"

	communitydomain "community-grocery-go/internal/domain/community"
)

// InMemoryCommunityCache keeps resolved communities per process. Entries are
// copied on the way in and on the way out, so callers never share member
// slices with the cache or with each other.
type InMemoryCommunityCache struct {
	mu    sync.Mutex
	items map[string]communityItem
	now   func() time.Time
}

type communityItem struct {
	value     communitydomain.Details
	expiresAt time.Time
}

func NewInMemoryCommunityCache() *InMemoryCommunityCache {
	return &InMemoryCommunityCache{
		items: make(map[string]communityItem),
		now:   time.Now,
	}
}

func (c *InMemoryCommunityCache) Get(_ context.Context, communityID string) (*communitydomain.Details, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[communityID]
	if !ok {
		return nil, false
	}
	if !item.expiresAt.After(c.now()) {
		delete(c.items, communityID)
		return nil, false
	}

	value := cloneDetails(item.value)
	return &value, true
}

// Set ignores details older than the live entry. An expired entry no longer
// guards its version.
func (c *InMemoryCommunityCache) Set(_ context.Context, communityID string, details *communitydomain.Details, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if details == nil || ttl <= 0 {
		delete(c.items, communityID)
		return
	}

	now := c.now()
	if current, ok := c.items[communityID]; ok && current.expiresAt.After(now) &&
		current.value.Community.Version > details.Community.Version {
		return
	}
	c.items[communityID] = communityItem{
		value:     cloneDetails(*details),
		expiresAt: now.Add(ttl),
	}
}

func (c *InMemoryCommunityCache) Delete(_ context.Context, communityID string) {
	c.mu.Lock()
	delete(c.items, communityID)
	c.mu.Unlock()
}

func (c *InMemoryCommunityCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]communityItem)
	c.mu.Unlock()
}

func cloneDetails(details communitydomain.Details) communitydomain.Details {
	clone := details
	clone.Community.Members = append([]communitydomain.Member(nil), details.Community.Members...)
	clone.Members = append([]communitydomain.MemberProfile(nil), details.Members...)
	return clone
}
