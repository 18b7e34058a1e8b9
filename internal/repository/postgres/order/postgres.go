package order

import (
	"context"
	"errors"

	orderdomain "community-grocery-go/internal/domain/order"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(orderdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CommunityExists(ctx context.Context, communityID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("communities").
		Where("id = ?", communityID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) GetPrices(ctx context.Context, articleIDs []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(articleIDs))
	if len(articleIDs) == 0 {
		return prices, nil
	}

	type priceRow struct {
		ID    string  `gorm:"column:id"`
		Price float64 `gorm:"column:price"`
	}

	var rows []priceRow
	if err := r.db.WithContext(ctx).
		Table("articles").
		Select("id, price").
		Where("id IN ?", articleIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		prices[row.ID] = row.Price
	}
	return prices, nil
}

// CreateOrder inserts the order row and its items; gorm writes the Items association.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *orderdomain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *PostgresRepository) ListOrders(ctx context.Context, userID string) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, orderID, userID string) (*orderdomain.Order, error) {
	var order orderdomain.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// DeleteOrder matches on both id and owner; order_items rows cascade.
func (r *PostgresRepository) DeleteOrder(ctx context.Context, orderID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&orderdomain.Order{}, "id = ? AND user_id = ?", orderID, userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
