package community

import (
	"context"
	"errors"
	"strings"
	"time"

	"community-grocery-go/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultVersionRetries = 3
	defaultCacheTTL       = time.Minute
)

type Service struct {
	repo      Repository
	cache     Cache
	cacheTTL  time.Duration
	publisher Publisher
	retries   int
	log       logger.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithPublisher(publisher Publisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

func WithVersionRetries(retries int) Option {
	return func(s *Service) {
		if retries > 0 {
			s.retries = retries
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		cache:     noopCache{},
		cacheTTL:  defaultCacheTTL,
		publisher: noopPublisher{},
		retries:   defaultVersionRetries,
		log:       logger.Discard(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateCommunity(ctx context.Context, input CreateInput) (*Details, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := input.Location.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	community := Community{
		ID:           uuid.NewString(),
		Name:         name,
		Longitude:    input.Location.Longitude,
		Latitude:     input.Location.Latitude,
		DeliveryDay:  DefaultDeliveryDay,
		DeliveryTime: DefaultDeliveryTime,
		FounderID:    input.FounderID,
		Version:      1,
	}
	if err := community.addMember(input.FounderID, now); err != nil {
		return nil, err
	}
	community.recompute()

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		current, err := tx.GetUserCommunity(ctx, input.FounderID)
		if err != nil {
			return err
		}
		if current != nil {
			return ErrAlreadyInAnotherCommunity
		}
		if err := tx.CreateCommunity(ctx, &community); err != nil {
			return err
		}
		return tx.SetUserCommunity(ctx, input.FounderID, &community.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventCommunityCreated, &community, input.FounderID)
	if details := s.refresh(ctx, &community); details != nil {
		return details, nil
	}
	return s.resolve(ctx, s.repo, &community)
}

func (s *Service) GetCommunity(ctx context.Context, communityID string) (*Details, error) {
	if cached, ok := s.cache.Get(ctx, communityID); ok {
		return cached, nil
	}

	community, err := s.repo.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	details, err := s.resolve(ctx, s.repo, community)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, communityID, details, s.cacheTTL)
	return details, nil
}

func (s *Service) ListCommunities(ctx context.Context) ([]Details, error) {
	communities, err := s.repo.ListCommunities(ctx)
	if err != nil {
		return nil, err
	}

	var userIDs []string
	for _, community := range communities {
		for _, member := range community.Members {
			userIDs = append(userIDs, member.UserID)
		}
	}
	profiles, err := s.repo.ListProfiles(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	result := make([]Details, 0, len(communities))
	for i := range communities {
		result = append(result, Details{
			Community: communities[i],
			Members:   memberProfiles(communities[i].Members, profiles),
		})
	}
	return result, nil
}

func (s *Service) ListMembers(ctx context.Context, communityID string) ([]MemberProfile, error) {
	details, err := s.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return details.Members, nil
}

func (s *Service) GetVotes(ctx context.Context, communityID string) (*Votes, error) {
	details, err := s.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return &Votes{Preferences: details.Community.Preferences(), Members: details.Members}, nil
}

// Join appends the user to the roster with the default choice and points the
// user's community reference at it, both inside one transaction.
func (s *Service) Join(ctx context.Context, communityID, userID string) (*Details, error) {
	community, details, err := s.mutate(ctx, communityID, func(tx Repository, c *Community) (bool, error) {
		if c.HasMember(userID) {
			return false, ErrAlreadyMember
		}
		current, err := tx.GetUserCommunity(ctx, userID)
		if err != nil {
			return false, err
		}
		if current != nil {
			return false, ErrAlreadyInAnotherCommunity
		}
		if err := c.addMember(userID, s.now()); err != nil {
			return false, err
		}
		c.recompute()
		return true, tx.SetUserCommunity(ctx, userID, &c.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventMemberJoined, community, userID)
	if details != nil {
		return details, nil
	}
	return s.resolve(ctx, s.repo, community)
}

// Leave removes the user from the roster. Leaving a community the user is not
// in is a no-op.
func (s *Service) Leave(ctx context.Context, communityID, userID string) error {
	removed := false
	community, _, err := s.mutate(ctx, communityID, func(tx Repository, c *Community) (bool, error) {
		removed = c.removeMember(userID)
		if !removed {
			return false, nil
		}
		c.recompute()

		current, err := tx.GetUserCommunity(ctx, userID)
		if errors.Is(err, ErrUserNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if current != nil && *current == c.ID {
			return true, tx.SetUserCommunity(ctx, userID, nil)
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.publish(ctx, EventMemberLeft, community, userID)
	}
	return nil
}

func (s *Service) Vote(ctx context.Context, communityID, userID string, choice DeliveryTime) (*Votes, error) {
	choice, err := ParseDeliveryTime(string(choice))
	if err != nil {
		return nil, err
	}

	community, details, err := s.mutate(ctx, communityID, func(_ Repository, c *Community) (bool, error) {
		if err := c.castVote(userID, choice); err != nil {
			return false, err
		}
		c.recompute()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventVoteCast, community, userID)
	if details == nil {
		details, err = s.resolve(ctx, s.repo, community)
		if err != nil {
			return nil, err
		}
	}
	return &Votes{Preferences: community.Preferences(), Members: details.Members}, nil
}

// UpdatePreferences overwrites both preference fields regardless of the vote
// tally. The next join, leave or vote recomputes the delivery time again.
func (s *Service) UpdatePreferences(ctx context.Context, communityID string, day DeliveryDay, slot DeliveryTime) (*Preferences, error) {
	day, err := ParseDeliveryDay(string(day))
	if err != nil {
		return nil, err
	}
	slot, err = ParseDeliveryTime(string(slot))
	if err != nil {
		return nil, err
	}

	community, _, err := s.mutate(ctx, communityID, func(_ Repository, c *Community) (bool, error) {
		c.DeliveryDay = day
		c.DeliveryTime = slot
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventPreferencesUpdated, community, "")
	prefs := community.Preferences()
	return &prefs, nil
}

// mutate runs a read-modify-write of one community inside a transaction and
// replays it when the version-checked save loses a race. A committed change
// replaces the cache entry with the new version, returned resolved.
func (s *Service) mutate(ctx context.Context, communityID string, fn func(tx Repository, c *Community) (bool, error)) (*Community, *Details, error) {
	var (
		result  *Community
		changed bool
	)
	for attempt := 1; ; attempt++ {
		err := s.repo.Transaction(ctx, func(tx Repository) error {
			community, err := tx.GetCommunity(ctx, communityID)
			if err != nil {
				return err
			}
			changed, err = fn(tx, community)
			if err != nil {
				return err
			}
			if changed {
				if err := tx.SaveCommunity(ctx, community); err != nil {
					return err
				}
			}
			result = community
			return nil
		})
		if errors.Is(err, ErrVersionConflict) && attempt < s.retries {
			s.log.Debug("community: version conflict, retrying", "community_id", communityID, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		break
	}

	if !changed {
		return result, nil, nil
	}
	return result, s.refresh(ctx, result), nil
}

// refresh caches the resolved community. Caches keep the entry with the
// highest version, so a read that raced this write cannot put older state back.
func (s *Service) refresh(ctx context.Context, community *Community) *Details {
	details, err := s.resolve(ctx, s.repo, community)
	if err != nil {
		s.log.InternalError("community: refresh cache failed", err, "community_id", community.ID)
		s.cache.Delete(ctx, community.ID)
		return nil
	}
	s.cache.Set(ctx, community.ID, details, s.cacheTTL)
	return details
}

func (s *Service) resolve(ctx context.Context, repo Repository, community *Community) (*Details, error) {
	userIDs := make([]string, 0, len(community.Members))
	for _, member := range community.Members {
		userIDs = append(userIDs, member.UserID)
	}
	profiles, err := repo.ListProfiles(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	return &Details{Community: *community, Members: memberProfiles(community.Members, profiles)}, nil
}

func (s *Service) publish(ctx context.Context, eventType EventType, community *Community, userID string) {
	event := Event{
		Type:         eventType,
		CommunityID:  community.ID,
		UserID:       userID,
		DeliveryDay:  community.DeliveryDay,
		DeliveryTime: community.DeliveryTime,
		Version:      community.Version,
		OccurredAt:   s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.InternalError("community: publish event failed", err, "type", eventType, "community_id", community.ID)
	}
}

func memberProfiles(members []Member, profiles map[string]Profile) []MemberProfile {
	result := make([]MemberProfile, 0, len(members))
	for _, member := range members {
		profile := profiles[member.UserID]
		result = append(result, MemberProfile{
			UserID:       member.UserID,
			Name:         profile.Name,
			Email:        profile.Email,
			DeliveryTime: member.DeliveryTime,
			JoinedAt:     member.JoinedAt,
		})
	}
	return result
}
