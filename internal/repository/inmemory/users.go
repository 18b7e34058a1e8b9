package inmemory

import (
	"context"
	"time"

	userdomain "community-grocery-go/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) CreateUser(ctx context.Context, user *userdomain.User) error {
	return r.store.view(nil, func(data *dataset) error {
		for _, existing := range data.users {
			if existing.Email == user.Email {
				return userdomain.ErrEmailTaken
			}
		}
		r.insert(data, user)
		return nil
	})
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*userdomain.User, error) {
	return r.find(func(user userdomain.User) bool { return user.ID == userID })
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return r.find(func(user userdomain.User) bool { return user.Email == email })
}

func (r *UserRepository) EnsureUser(ctx context.Context, user *userdomain.User) error {
	return r.store.view(nil, func(data *dataset) error {
		if _, ok := data.users[user.ID]; ok {
			return nil
		}
		r.insert(data, user)
		return nil
	})
}

func (r *UserRepository) insert(data *dataset, user *userdomain.User) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	data.users[user.ID] = cloneUser(*user)
}

func (r *UserRepository) find(match func(userdomain.User) bool) (*userdomain.User, error) {
	var result *userdomain.User
	_ = r.store.view(nil, func(data *dataset) error {
		for _, user := range data.users {
			if match(user) {
				clone := cloneUser(user)
				result = &clone
				return nil
			}
		}
		return nil
	})
	if result == nil {
		return nil, userdomain.ErrUserNotFound
	}
	return result, nil
}
