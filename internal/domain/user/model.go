package user

import "time"

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	CommunityID  *string   `gorm:"type:uuid"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
