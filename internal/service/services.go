package service

import (
	"context"
	"errors"

	"github.com/blog-cms/internal/events"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/rs/zerolog"
)

// ErrCategoryNotConfigured is returned when a page filters on a category that
// has not been created
var ErrCategoryNotConfigured = errors.New("category not configured")

// CategoryService defines the interface for category operations
type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	ListWithArticles(ctx context.Context) ([]models.CategoryWithArticles, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	Rename(ctx context.Context, id int64, name string) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	Seed(ctx context.Context, names []string) (int, error)
}

// ArticleService defines the interface for article operations
type ArticleService interface {
	Latest(ctx context.Context) ([]models.Article, error)
	ListByCategoryName(ctx context.Context, name string) ([]models.Article, error)
	List(ctx context.Context) ([]models.Article, error)
	Get(ctx context.Context, id int64) (*models.Article, error)
	Create(ctx context.Context, in models.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, id int64, in models.ArticleInput) (*models.Article, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Category CategoryService
	Article  ArticleService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, publisher events.Publisher, log zerolog.Logger) *Services {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Services{
		Category: newCategoryService(repos, log),
		Article:  newArticleService(repos, publisher, log),
	}
}
