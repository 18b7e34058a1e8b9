package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// CreateOrder prices the items against the current catalog and stores the
// order with a frozen total. Nothing is written when any article is unknown.
func (s *Service) CreateOrder(ctx context.Context, input CreateInput) (*Order, error) {
	items, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}
	if input.DeliveryDate.IsZero() {
		return nil, ErrDeliveryDateRequired
	}

	order := Order{
		ID:           uuid.NewString(),
		UserID:       input.UserID,
		CommunityID:  input.CommunityID,
		DeliveryDate: input.DeliveryDate.UTC(),
		Status:       StatusPending,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		exists, err := tx.CommunityExists(ctx, input.CommunityID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCommunityNotFound
		}

		prices, err := tx.GetPrices(ctx, distinctArticleIDs(items))
		if err != nil {
			return err
		}
		total, err := Price(items, prices)
		if err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		order.Items = items
		order.TotalAmount = total
		now := s.now()
		order.CreatedAt = now
		order.UpdatedAt = now
		return tx.CreateOrder(ctx, &order)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		return []Order{}, nil
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID, userID string) (*Order, error) {
	return s.repo.GetOrder(ctx, orderID, userID)
}

// DeleteOrder removes the order only for its owner. A foreign order reports
// the same error as a missing one.
func (s *Service) DeleteOrder(ctx context.Context, orderID, userID string) error {
	deleted, err := s.repo.DeleteOrder(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrOrderNotFound
	}
	return nil
}

func buildItems(inputs []ItemInput) ([]Item, error) {
	if len(inputs) == 0 {
		return nil, ErrNoItems
	}
	items := make([]Item, 0, len(inputs))
	for i, input := range inputs {
		articleID := strings.TrimSpace(input.ArticleID)
		if articleID == "" {
			return nil, ErrArticleRequired
		}
		if input.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		items = append(items, Item{Position: i, ArticleID: articleID, Quantity: input.Quantity})
	}
	return items, nil
}

func distinctArticleIDs(items []Item) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ArticleID]; ok {
			continue
		}
		seen[item.ArticleID] = struct{}{}
		ids = append(ids, item.ArticleID)
	}
	return ids
}
