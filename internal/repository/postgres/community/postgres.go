package community

import (
	"context"
	"errors"
	"time"

	communitydomain "community-grocery-go/internal/domain/community"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(communitydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetCommunity(ctx context.Context, communityID string) (*communitydomain.Community, error) {
	var community communitydomain.Community
	if err := r.db.WithContext(ctx).Where("id = ?", communityID).First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, communitydomain.ErrCommunityNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("position asc").
		Find(&community.Members).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *PostgresRepository) ListCommunities(ctx context.Context) ([]communitydomain.Community, error) {
	var communities []communitydomain.Community
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&communities).Error; err != nil {
		return nil, err
	}
	if len(communities) == 0 {
		return communities, nil
	}

	ids := make([]string, 0, len(communities))
	for _, community := range communities {
		ids = append(ids, community.ID)
	}

	var members []communitydomain.Member
	if err := r.db.WithContext(ctx).
		Where("community_id IN ?", ids).
		Order("community_id asc, position asc").
		Find(&members).Error; err != nil {
		return nil, err
	}

	byCommunity := make(map[string][]communitydomain.Member, len(communities))
	for _, member := range members {
		byCommunity[member.CommunityID] = append(byCommunity[member.CommunityID], member)
	}
	for i := range communities {
		communities[i].Members = byCommunity[communities[i].ID]
	}
	return communities, nil
}

func (r *PostgresRepository) CreateCommunity(ctx context.Context, community *communitydomain.Community) error {
	if err := r.db.WithContext(ctx).Create(community).Error; err != nil {
		return err
	}
	return r.insertMembers(ctx, community.Members)
}

func (r *PostgresRepository) SaveCommunity(ctx context.Context, community *communitydomain.Community) error {
	result := r.db.WithContext(ctx).
		Model(&communitydomain.Community{}).
		Where("id = ? AND version = ?", community.ID, community.Version).
		Updates(map[string]interface{}{
			"name":          community.Name,
			"delivery_day":  community.DeliveryDay,
			"delivery_time": community.DeliveryTime,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return communitydomain.ErrVersionConflict
	}
	community.Version++

	if err := r.db.WithContext(ctx).
		Where("community_id = ?", community.ID).
		Delete(&communitydomain.Member{}).Error; err != nil {
		return err
	}
	return r.insertMembers(ctx, community.Members)
}

// insertMembers relies on the unique index on community_members.user_id to
// reject a user racing into a second community.
func (r *PostgresRepository) insertMembers(ctx context.Context, members []communitydomain.Member) error {
	if len(members) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&members).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return communitydomain.ErrAlreadyInAnotherCommunity
	}
	return err
}

func (r *PostgresRepository) GetUserCommunity(ctx context.Context, userID string) (*string, error) {
	var row struct {
		CommunityID *string `gorm:"column:community_id"`
	}
	err := r.db.WithContext(ctx).
		Table("users").
		Select("community_id").
		Where("id = ?", userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, communitydomain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.CommunityID, nil
}

func (r *PostgresRepository) SetUserCommunity(ctx context.Context, userID string, communityID *string) error {
	result := r.db.WithContext(ctx).
		Table("users").
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"community_id": communityID,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return communitydomain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) ListProfiles(ctx context.Context, userIDs []string) (map[string]communitydomain.Profile, error) {
	profiles := make(map[string]communitydomain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}

	type profileRow struct {
		ID    string `gorm:"column:id"`
		Name  string `gorm:"column:name"`
		Email string `gorm:"column:email"`
	}

	var rows []profileRow
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("id, name, email").
		Where("id IN ?", userIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		profiles[row.ID] = communitydomain.Profile{UserID: row.ID, Name: row.Name, Email: row.Email}
	}
	return profiles, nil
}
