package community

import (
	"context"
	"time"
)

type EventType string

const (
	EventCommunityCreated   EventType = "community_created"
	EventMemberJoined       EventType = "member_joined"
	EventMemberLeft         EventType = "member_left"
	EventVoteCast           EventType = "vote_cast"
	EventPreferencesUpdated EventType = "preferences_updated"
)

type Event struct {
	Type         EventType    `json:"type"`
	CommunityID  string       `json:"community_id"`
	UserID       string       `json:"user_id,omitempty"`
	DeliveryDay  DeliveryDay  `json:"delivery_day"`
	DeliveryTime DeliveryTime `json:"delivery_time"`
	Version      int64        `json:"version"`
	OccurredAt   time.Time    `json:"occurred_at"`
}

// Publisher is notified after a community mutation commits.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error {
	return nil
}
