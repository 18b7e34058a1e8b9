package user

import (
	"context"
	"errors"

	userdomain "community-grocery-go/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *userdomain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return userdomain.ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, userID string) (*userdomain.User, error) {
	return r.first(ctx, "id = ?", userID)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *PostgresRepository) EnsureUser(ctx context.Context, user *userdomain.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(user).Error
}

func (r *PostgresRepository) first(ctx context.Context, query string, arg string) (*userdomain.User, error) {
	var user userdomain.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
