package order

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CommunityExists(ctx context.Context, communityID string) (bool, error)
	// GetPrices returns catalog prices keyed by article id. Unknown ids are absent.
	GetPrices(ctx context.Context, articleIDs []string) (map[string]float64, error)
	CreateOrder(ctx context.Context, order *Order) error
	ListOrders(ctx context.Context, userID string) ([]Order, error)
	GetOrder(ctx context.Context, orderID, userID string) (*Order, error)
	DeleteOrder(ctx context.Context, orderID, userID string) (bool, error)
}
