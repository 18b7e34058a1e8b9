package article

import "context"

type Repository interface {
	ListArticles(ctx context.Context, filter ListFilter) ([]Article, error)
	GetArticleByID(ctx context.Context, articleID string) (*Article, error)
	// GetArticlesByIDs returns the articles that exist; missing ids are simply absent.
	GetArticlesByIDs(ctx context.Context, articleIDs []string) ([]Article, error)
	CreateArticle(ctx context.Context, article *Article) error
	UpdateArticle(ctx context.Context, article *Article) error
	DeleteArticle(ctx context.Context, articleID string) (bool, error)
}
