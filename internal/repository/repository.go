package repository

import (
	"context"

	"github.com/blog-cms/internal/database"
	"github.com/blog-cms/internal/models"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	ListWithArticles(ctx context.Context) ([]models.CategoryWithArticles, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	Query(ctx context.Context, q ArticleQuery) ([]models.Article, error)
	Each(ctx context.Context, q ArticleQuery, fn func(*models.Article) error) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}

// ArticleOrder selects the sort order of an article query
type ArticleOrder int

const (
	// OrderDefault returns articles in insertion order
	OrderDefault ArticleOrder = iota
	// OrderPubDateDesc returns the newest articles first
	OrderPubDateDesc
)

// ArticleQuery filters, orders and limits an article query. The zero value
// matches every article.
type ArticleQuery struct {
	CategoryID *int64
	Order      ArticleOrder
	Limit      int // 0 means no limit
}

// Repositories holds all repository interfaces
type Repositories struct {
	Category CategoryRepository
	Article  ArticleRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Category: NewCategoryRepo(db),
		Article:  NewArticleRepo(db),
	}
}
