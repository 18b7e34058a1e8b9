package article

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListArticles(ctx context.Context, filter ListFilter) ([]Article, error) {
	if filter.Category != nil {
		if err := validateCategory(*filter.Category); err != nil {
			return nil, err
		}
	}
	articles, err := s.repo.ListArticles(ctx, filter)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		return []Article{}, nil
	}
	return articles, nil
}

func (s *Service) GetArticle(ctx context.Context, articleID string) (*Article, error) {
	return s.repo.GetArticleByID(ctx, articleID)
}

func (s *Service) CreateArticle(ctx context.Context, input Input) (*Article, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	article := Article{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Unit:        input.Unit,
		Category:    input.Category,
		Available:   input.Available,
	}
	if err := s.repo.CreateArticle(ctx, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// UpdateArticle replaces every mutable attribute. The id never changes.
func (s *Service) UpdateArticle(ctx context.Context, articleID string, input Input) (*Article, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	article, err := s.repo.GetArticleByID(ctx, articleID)
	if err != nil {
		return nil, err
	}

	article.Name = input.Name
	article.Description = input.Description
	article.Price = input.Price
	article.Unit = input.Unit
	article.Category = input.Category
	article.Available = input.Available
	article.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateArticle(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *Service) DeleteArticle(ctx context.Context, articleID string) error {
	deleted, err := s.repo.DeleteArticle(ctx, articleID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrArticleNotFound
	}
	return nil
}

func normalizeInput(input Input) (Input, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" {
		return input, ErrNameRequired
	}
	if input.Price < 0 || math.IsNaN(input.Price) || math.IsInf(input.Price, 0) {
		return input, ErrInvalidPrice
	}
	input.Price = math.Round(input.Price*100) / 100
	if err := validateUnit(input.Unit); err != nil {
		return input, err
	}
	if err := validateCategory(input.Category); err != nil {
		return input, err
	}
	return input, nil
}

func validateUnit(unit Unit) error {
	for _, known := range Units {
		if unit == known {
			return nil
		}
	}
	return ErrInvalidUnit
}

func validateCategory(category Category) error {
	for _, known := range Categories {
		if category == known {
			return nil
		}
	}
	return ErrInvalidCategory
}
