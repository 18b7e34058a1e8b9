package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	communitydomain "community-grocery-go/internal/domain/community"
	"community-grocery-go/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const communityKeyPrefix = "grocery:community:"

// setIfNewer writes the entry unless the stored version is higher.
// KEYS: entry, version. ARGV: version, payload, ttl in milliseconds.
var setIfNewer = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if current and tonumber(current) > tonumber(ARGV[1]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[3])
return 1
`)

// CommunityCache stores resolved communities as JSON with a per-entry TTL.
// Redis failures are logged and reported as misses.
type CommunityCache struct {
	client *redis.Client
	log    logger.Logger
}

func NewCommunityCache(client *redis.Client, log logger.Logger) *CommunityCache {
	return &CommunityCache{client: client, log: log}
}

func (c *CommunityCache) Get(ctx context.Context, communityID string) (*communitydomain.Details, bool) {
	data, err := c.client.Get(ctx, communityKey(communityID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.InternalError("cache.community: get failed", err, "community_id", communityID)
		return nil, false
	}

	var details communitydomain.Details
	if err := json.Unmarshal(data, &details); err != nil {
		c.log.InternalError("cache.community: decode failed", err, "community_id", communityID)
		return nil, false
	}
	return &details, true
}

func (c *CommunityCache) Set(ctx context.Context, communityID string, details *communitydomain.Details, ttl time.Duration) {
	if details == nil || ttl <= 0 {
		c.Delete(ctx, communityID)
		return
	}

	data, err := json.Marshal(details)
	if err != nil {
		c.log.InternalError("cache.community: encode failed", err, "community_id", communityID)
		return
	}
	keys := []string{communityKey(communityID), versionKey(communityID)}
	err = setIfNewer.Run(ctx, c.client, keys, details.Community.Version, data, ttl.Milliseconds()).Err()
	if err != nil {
		c.log.InternalError("cache.community: set failed", err, "community_id", communityID)
	}
}

func (c *CommunityCache) Delete(ctx context.Context, communityID string) {
	if err := c.client.Del(ctx, communityKey(communityID), versionKey(communityID)).Err(); err != nil {
		c.log.InternalError("cache.community: delete failed", err, "community_id", communityID)
	}
}

func communityKey(communityID string) string {
	return communityKeyPrefix + communityID
}

func versionKey(communityID string) string {
	return communityKeyPrefix + communityID + ":version"
}
