package community

import (
	"fmt"
	"strings"
	"time"
)

type DeliveryTime string

const (
	Morning   DeliveryTime = "Morning"
	Afternoon DeliveryTime = "Afternoon"
	Evening   DeliveryTime = "Evening"
)

// DeliveryTimes lists the slots in tie-break order.
var DeliveryTimes = []DeliveryTime{Morning, Afternoon, Evening}

type DeliveryDay string

const (
	Monday    DeliveryDay = "Monday"
	Tuesday   DeliveryDay = "Tuesday"
	Wednesday DeliveryDay = "Wednesday"
	Thursday  DeliveryDay = "Thursday"
	Friday    DeliveryDay = "Friday"
	Saturday  DeliveryDay = "Saturday"
	Sunday    DeliveryDay = "Sunday"
)

var DeliveryDays = []DeliveryDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

const (
	DefaultDeliveryDay  = Monday
	DefaultDeliveryTime = Morning
)

type Point struct {
	Longitude float64
	Latitude  float64
}

func (p Point) Validate() error {
	if p.Longitude < -180 || p.Longitude > 180 || p.Latitude < -90 || p.Latitude > 90 {
		return ErrInvalidLocation
	}
	return nil
}

type Preferences struct {
	DeliveryDay  DeliveryDay
	DeliveryTime DeliveryTime
}

// Community is the aggregate root for membership and voting. Every write to it
// goes through a version-checked save.
type Community struct {
	ID           string       `gorm:"type:uuid;primaryKey"`
	Name         string       `gorm:"not null"`
	Longitude    float64      `gorm:"not null"`
	Latitude     float64      `gorm:"not null"`
	DeliveryDay  DeliveryDay  `gorm:"type:varchar(16);not null"`
	DeliveryTime DeliveryTime `gorm:"type:varchar(16);not null"`
	FounderID    string       `gorm:"type:uuid;not null"`
	Version      int64        `gorm:"not null;default:1"`
	CreatedAt    time.Time    `gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime"`

	Members []Member `gorm:"-"`
}

// Member is one roster entry. Position keeps the roster in join order.
type Member struct {
	CommunityID  string       `gorm:"type:uuid;primaryKey"`
	UserID       string       `gorm:"type:uuid;primaryKey;uniqueIndex"`
	DeliveryTime DeliveryTime `gorm:"type:varchar(16);not null"`
	Position     int          `gorm:"not null"`
	JoinedAt     time.Time    `gorm:"not null"`
}

func (Member) TableName() string {
	return "community_members"
}

// Profile holds the display attributes used to resolve a member's user id.
type Profile struct {
	UserID string
	Name   string
	Email  string
}

type MemberProfile struct {
	UserID       string
	Name         string
	Email        string
	DeliveryTime DeliveryTime
	JoinedAt     time.Time
}

type Details struct {
	Community Community
	Members   []MemberProfile
}

type Votes struct {
	Preferences Preferences
	Members     []MemberProfile
}

type CreateInput struct {
	FounderID string
	Name      string
	Location  Point
}

func (c *Community) Location() Point {
	return Point{Longitude: c.Longitude, Latitude: c.Latitude}
}

func (c *Community) Preferences() Preferences {
	return Preferences{DeliveryDay: c.DeliveryDay, DeliveryTime: c.DeliveryTime}
}

func (c *Community) HasMember(userID string) bool {
	return c.memberIndex(userID) >= 0
}

func (c *Community) memberIndex(userID string) int {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (c *Community) addMember(userID string, joinedAt time.Time) error {
	if c.HasMember(userID) {
		return ErrAlreadyMember
	}
	position := 0
	if n := len(c.Members); n > 0 {
		position = c.Members[n-1].Position + 1
	}
	c.Members = append(c.Members, Member{
		CommunityID:  c.ID,
		UserID:       userID,
		DeliveryTime: DefaultDeliveryTime,
		Position:     position,
		JoinedAt:     joinedAt,
	})
	return nil
}

func (c *Community) removeMember(userID string) bool {
	idx := c.memberIndex(userID)
	if idx < 0 {
		return false
	}
	c.Members = append(c.Members[:idx], c.Members[idx+1:]...)
	return true
}

func (c *Community) castVote(userID string, choice DeliveryTime) error {
	idx := c.memberIndex(userID)
	if idx < 0 {
		return ErrNotMember
	}
	c.Members[idx].DeliveryTime = choice
	return nil
}

// recompute refreshes the derived delivery time. An empty roster keeps the last value.
func (c *Community) recompute() {
	if len(c.Members) == 0 {
		return
	}
	c.DeliveryTime = Plurality(c.Members)
}

func ParseDeliveryTime(value string) (DeliveryTime, error) {
	value = strings.TrimSpace(value)
	for _, slot := range DeliveryTimes {
		if strings.EqualFold(value, string(slot)) {
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDeliveryTime, value)
}

// ParsePreferenceTime accepts a slot name or a HH:MM clock time mapped onto a slot:
// before 12:00 is Morning, before 17:00 Afternoon, otherwise Evening.
func ParsePreferenceTime(value string) (DeliveryTime, error) {
	if slot, err := ParseDeliveryTime(value); err == nil {
		return slot, nil
	}
	clock, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDeliveryTime, value)
	}
	switch hour := clock.Hour(); {
	case hour < 12:
		return Morning, nil
	case hour < 17:
		return Afternoon, nil
	default:
		return Evening, nil
	}
}

func ParseDeliveryDay(value string) (DeliveryDay, error) {
	value = strings.TrimSpace(value)
	for _, day := range DeliveryDays {
		if strings.EqualFold(value, string(day)) {
			return day, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDeliveryDay, value)
}
