package inmemory

import (
	"context"
	"sort"
	"time"

	articledomain "community-grocery-go/internal/domain/article"
)

type ArticleRepository struct {
	store *Store
}

func (r *ArticleRepository) ListArticles(ctx context.Context, filter articledomain.ListFilter) ([]articledomain.Article, error) {
	var result []articledomain.Article
	_ = r.store.view(nil, func(data *dataset) error {
		for _, article := range data.articles {
			if filter.Category != nil && article.Category != *filter.Category {
				continue
			}
			if filter.Available != nil && article.Available != *filter.Available {
				continue
			}
			result = append(result, article)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *ArticleRepository) GetArticleByID(ctx context.Context, articleID string) (*articledomain.Article, error) {
	var result articledomain.Article
	err := r.store.view(nil, func(data *dataset) error {
		article, ok := data.articles[articleID]
		if !ok {
			return articledomain.ErrArticleNotFound
		}
		result = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ArticleRepository) GetArticlesByIDs(ctx context.Context, articleIDs []string) ([]articledomain.Article, error) {
	result := make([]articledomain.Article, 0, len(articleIDs))
	_ = r.store.view(nil, func(data *dataset) error {
		for _, id := range articleIDs {
			if article, ok := data.articles[id]; ok {
				result = append(result, article)
			}
		}
		return nil
	})
	return result, nil
}

func (r *ArticleRepository) CreateArticle(ctx context.Context, article *articledomain.Article) error {
	return r.store.view(nil, func(data *dataset) error {
		now := time.Now().UTC()
		article.CreatedAt = now
		article.UpdatedAt = now
		data.articles[article.ID] = *article
		return nil
	})
}

func (r *ArticleRepository) UpdateArticle(ctx context.Context, article *articledomain.Article) error {
	return r.store.view(nil, func(data *dataset) error {
		if _, ok := data.articles[article.ID]; !ok {
			return articledomain.ErrArticleNotFound
		}
		data.articles[article.ID] = *article
		return nil
	})
}

func (r *ArticleRepository) DeleteArticle(ctx context.Context, articleID string) (bool, error) {
	deleted := false
	_ = r.store.view(nil, func(data *dataset) error {
		if _, ok := data.articles[articleID]; ok {
			delete(data.articles, articleID)
			deleted = true
		}
		return nil
	})
	return deleted, nil
}
