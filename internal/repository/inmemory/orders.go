package inmemory

import (
	"context"
	"sort"

	orderdomain "community-grocery-go/internal/domain/order"
)

type OrderRepository struct {
	store *Store
	tx    *dataset
}

func (r *OrderRepository) Transaction(ctx context.Context, fn func(orderdomain.Repository) error) error {
	return r.store.transaction(r.tx, func(data *dataset) error {
		return fn(&OrderRepository{store: r.store, tx: data})
	})
}

func (r *OrderRepository) CommunityExists(ctx context.Context, communityID string) (bool, error) {
	exists := false
	_ = r.store.view(r.tx, func(data *dataset) error {
		_, exists = data.communities[communityID]
		return nil
	})
	return exists, nil
}

func (r *OrderRepository) GetPrices(ctx context.Context, articleIDs []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(articleIDs))
	_ = r.store.view(r.tx, func(data *dataset) error {
		for _, id := range articleIDs {
			if article, ok := data.articles[id]; ok {
				prices[id] = article.Price
			}
		}
		return nil
	})
	return prices, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *orderdomain.Order) error {
	return r.store.view(r.tx, func(data *dataset) error {
		data.orders[order.ID] = cloneOrder(*order)
		return nil
	})
}

func (r *OrderRepository) ListOrders(ctx context.Context, userID string) ([]orderdomain.Order, error) {
	var result []orderdomain.Order
	_ = r.store.view(r.tx, func(data *dataset) error {
		for _, order := range data.orders {
			if order.UserID == userID {
				result = append(result, cloneOrder(order))
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID, userID string) (*orderdomain.Order, error) {
	var result orderdomain.Order
	err := r.store.view(r.tx, func(data *dataset) error {
		order, ok := data.orders[orderID]
		if !ok || order.UserID != userID {
			return orderdomain.ErrOrderNotFound
		}
		result = cloneOrder(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, orderID, userID string) (bool, error) {
	deleted := false
	_ = r.store.view(r.tx, func(data *dataset) error {
		if order, ok := data.orders[orderID]; ok && order.UserID == userID {
			delete(data.orders, orderID)
			deleted = true
		}
		return nil
	})
	return deleted, nil
}
