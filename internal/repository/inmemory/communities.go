package inmemory

import (
	"context"
	"sort"
	"time"

	communitydomain "community-grocery-go/internal/domain/community"
)

type CommunityRepository struct {
	store *Store
	tx    *dataset
}

func (r *CommunityRepository) Transaction(ctx context.Context, fn func(communitydomain.Repository) error) error {
	return r.store.transaction(r.tx, func(data *dataset) error {
		return fn(&CommunityRepository{store: r.store, tx: data})
	})
}

func (r *CommunityRepository) GetCommunity(ctx context.Context, communityID string) (*communitydomain.Community, error) {
	var result communitydomain.Community
	err := r.store.view(r.tx, func(data *dataset) error {
		community, ok := data.communities[communityID]
		if !ok {
			return communitydomain.ErrCommunityNotFound
		}
		result = cloneCommunity(community)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *CommunityRepository) ListCommunities(ctx context.Context) ([]communitydomain.Community, error) {
	var result []communitydomain.Community
	_ = r.store.view(r.tx, func(data *dataset) error {
		result = make([]communitydomain.Community, 0, len(data.communities))
		for _, community := range data.communities {
			result = append(result, cloneCommunity(community))
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *CommunityRepository) CreateCommunity(ctx context.Context, community *communitydomain.Community) error {
	return r.store.view(r.tx, func(data *dataset) error {
		if err := checkMembersUnique(data, community); err != nil {
			return err
		}
		now := time.Now().UTC()
		if community.CreatedAt.IsZero() {
			community.CreatedAt = now
		}
		community.UpdatedAt = now
		data.communities[community.ID] = cloneCommunity(*community)
		return nil
	})
}

func (r *CommunityRepository) SaveCommunity(ctx context.Context, community *communitydomain.Community) error {
	return r.store.view(r.tx, func(data *dataset) error {
		stored, ok := data.communities[community.ID]
		if !ok || stored.Version != community.Version {
			return communitydomain.ErrVersionConflict
		}
		if err := checkMembersUnique(data, community); err != nil {
			return err
		}
		community.Version++
		community.UpdatedAt = time.Now().UTC()
		data.communities[community.ID] = cloneCommunity(*community)
		return nil
	})
}

// checkMembersUnique mirrors the unique index on community_members.user_id.
func checkMembersUnique(data *dataset, community *communitydomain.Community) error {
	for id, other := range data.communities {
		if id == community.ID {
			continue
		}
		for _, member := range community.Members {
			if other.HasMember(member.UserID) {
				return communitydomain.ErrAlreadyInAnotherCommunity
			}
		}
	}
	return nil
}

func (r *CommunityRepository) GetUserCommunity(ctx context.Context, userID string) (*string, error) {
	var result *string
	err := r.store.view(r.tx, func(data *dataset) error {
		user, ok := data.users[userID]
		if !ok {
			return communitydomain.ErrUserNotFound
		}
		result = cloneUser(user).CommunityID
		return nil
	})
	return result, err
}

func (r *CommunityRepository) SetUserCommunity(ctx context.Context, userID string, communityID *string) error {
	return r.store.view(r.tx, func(data *dataset) error {
		user, ok := data.users[userID]
		if !ok {
			return communitydomain.ErrUserNotFound
		}
		user.CommunityID = nil
		if communityID != nil {
			id := *communityID
			user.CommunityID = &id
		}
		user.UpdatedAt = time.Now().UTC()
		data.users[userID] = user
		return nil
	})
}

func (r *CommunityRepository) ListProfiles(ctx context.Context, userIDs []string) (map[string]communitydomain.Profile, error) {
	profiles := make(map[string]communitydomain.Profile, len(userIDs))
	_ = r.store.view(r.tx, func(data *dataset) error {
		for _, id := range userIDs {
			if user, ok := data.users[id]; ok {
				profiles[id] = communitydomain.Profile{UserID: id, Name: user.Name, Email: user.Email}
			}
		}
		return nil
	})
	return profiles, nil
}
