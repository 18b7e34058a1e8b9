package article

import (
	"context"
	"errors"

	articledomain "community-grocery-go/internal/domain/article"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListArticles(ctx context.Context, filter articledomain.ListFilter) ([]articledomain.Article, error) {
	query := r.db.WithContext(ctx).Model(&articledomain.Article{})
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}

	var articles []articledomain.Article
	if err := query.Order("name asc").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *PostgresRepository) GetArticleByID(ctx context.Context, articleID string) (*articledomain.Article, error) {
	var article articledomain.Article
	if err := r.db.WithContext(ctx).Where("id = ?", articleID).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, articledomain.ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (r *PostgresRepository) GetArticlesByIDs(ctx context.Context, articleIDs []string) ([]articledomain.Article, error) {
	if len(articleIDs) == 0 {
		return []articledomain.Article{}, nil
	}
	var articles []articledomain.Article
	if err := r.db.WithContext(ctx).Where("id IN ?", articleIDs).Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *PostgresRepository) CreateArticle(ctx context.Context, article *articledomain.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *PostgresRepository) UpdateArticle(ctx context.Context, article *articledomain.Article) error {
	result := r.db.WithContext(ctx).
		Model(&articledomain.Article{}).
		Where("id = ?", article.ID).
		Updates(map[string]interface{}{
			"name":        article.Name,
			"description": article.Description,
			"price":       article.Price,
			"unit":        article.Unit,
			"category":    article.Category,
			"available":   article.Available,
			"updated_at":  article.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return articledomain.ErrArticleNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteArticle(ctx context.Context, articleID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&articledomain.Article{}, "id = ?", articleID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
