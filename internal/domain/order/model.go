package order

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

type Order struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	UserID       string    `gorm:"type:uuid;not null;index"`
	CommunityID  string    `gorm:"type:uuid;not null;index"`
	TotalAmount  float64   `gorm:"type:numeric(12,2);not null"`
	DeliveryDate time.Time `gorm:"not null"`
	Status       Status    `gorm:"type:varchar(16);not null"`
	Items        []Item    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Item keeps the unit price seen at creation so later catalog changes do not
// rewrite history.
type Item struct {
	OrderID   string  `gorm:"type:uuid;primaryKey"`
	Position  int     `gorm:"primaryKey"`
	ArticleID string  `gorm:"type:uuid;not null"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"type:numeric(12,2);not null"`
}

func (Item) TableName() string {
	return "order_items"
}

type ItemInput struct {
	ArticleID string
	Quantity  int
}

type CreateInput struct {
	UserID       string
	CommunityID  string
	Items        []ItemInput
	DeliveryDate time.Time
}
