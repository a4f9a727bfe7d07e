package mocks

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
)

var errMockUnique = errors.New("mock: unique constraint failed")

// MockCategoryRepository is an in-memory implementation of CategoryRepository
type MockCategoryRepository struct {
	Categories map[int64]*models.Category
	Articles   *MockArticleRepository // optional, for ListWithArticles and delete checks
	NextID     int64
	Err        error // returned by every call when set
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[int64]*models.Category)}
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if m.Err != nil {
		return m.Err
	}
	for _, c := range m.Categories {
		if c.Name == category.Name {
			return &repository.ConstraintError{Kind: repository.ConstraintUnique, Err: errMockUnique}
		}
	}
	m.NextID++
	category.ID = m.NextID
	stored := *category
	m.Categories[stored.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.Categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.Categories {
		if c.Name == name {
			out := *c
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	list := make([]models.Category, 0, len(m.Categories))
	for _, c := range m.Categories {
		list = append(list, *c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *MockCategoryRepository) ListWithArticles(ctx context.Context) ([]models.CategoryWithArticles, error) {
	categories, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.CategoryWithArticles, 0, len(categories))
	for _, c := range categories {
		entry := models.CategoryWithArticles{Category: c}
		if m.Articles != nil {
			for _, a := range m.Articles.sorted() {
				if a.CategoryID == c.ID {
					entry.Articles = append(entry.Articles, models.ArticleRef{ID: a.ID, Title: a.Title})
				}
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, c := range m.Categories {
		if c.Name == category.Name && c.ID != category.ID {
			return &repository.ConstraintError{Kind: repository.ConstraintUnique, Err: errMockUnique}
		}
	}
	stored := *category
	m.Categories[category.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Categories[id]; !ok {
		return repository.ErrNotFound
	}
	if m.Articles != nil {
		if n, _ := m.Articles.CountByCategory(ctx, id); n > 0 {
			return repository.ErrCategoryInUse
		}
	}
	delete(m.Categories, id)
	return nil
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	return len(m.Categories), m.Err
}

// MockArticleRepository is an in-memory implementation of ArticleRepository
type MockArticleRepository struct {
	Articles   map[int64]*models.Article
	Categories *MockCategoryRepository // optional, for FK checks and category names
	NextID     int64
	Err        error // returned by every call when set
	CreateErr  error // returned by Create only
	GetErr     error // returned by GetByID only
	UpdateErr  error // returned by Update only
	DeleteErr  error // returned by Delete only
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[int64]*models.Article)}
}

// NewMockRepositories returns linked category and article mocks
func NewMockRepositories() (*repository.Repositories, *MockCategoryRepository, *MockArticleRepository) {
	categories := NewMockCategoryRepository()
	articles := NewMockArticleRepository()
	categories.Articles = articles
	articles.Categories = categories
	return &repository.Repositories{Category: categories, Article: articles}, categories, articles
}

func (m *MockArticleRepository) check(article *models.Article) error {
	for _, a := range m.Articles {
		if a.Title == article.Title && a.ID != article.ID {
			return &repository.ConstraintError{Kind: repository.ConstraintUnique, Err: errMockUnique}
		}
	}
	if m.Categories != nil {
		if _, ok := m.Categories.Categories[article.CategoryID]; !ok {
			return &repository.ConstraintError{Kind: repository.ConstraintForeignKey, Err: errors.New("mock: foreign key constraint failed")}
		}
	}
	return nil
}

func (m *MockArticleRepository) withCategoryName(a models.Article) models.Article {
	if m.Categories != nil {
		if c, ok := m.Categories.Categories[a.CategoryID]; ok {
			a.CategoryName = c.Name
		}
	}
	return a
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.Err != nil {
		return m.Err
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if err := m.check(article); err != nil {
		return err
	}
	if article.PubDate.IsZero() {
		article.PubDate = time.Now().UTC()
	}
	m.NextID++
	article.ID = m.NextID
	stored := *article
	m.Articles[stored.ID] = &stored
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	a, ok := m.Articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := m.withCategoryName(*a)
	return &out, nil
}

func (m *MockArticleRepository) sorted() []models.Article {
	list := make([]models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		list = append(list, m.withCategoryName(*a))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (m *MockArticleRepository) Query(ctx context.Context, q repository.ArticleQuery) ([]models.Article, error) {
	result := []models.Article{}
	err := m.Each(ctx, q, func(a *models.Article) error {
		result = append(result, *a)
		return nil
	})
	return result, err
}

func (m *MockArticleRepository) Each(ctx context.Context, q repository.ArticleQuery, fn func(*models.Article) error) error {
	if m.Err != nil {
		return m.Err
	}
	list := m.sorted()
	if q.Order == repository.OrderPubDateDesc {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].PubDate.Equal(list[j].PubDate) {
				return list[i].ID > list[j].ID
			}
			return list[i].PubDate.After(list[j].PubDate)
		})
	}

	emitted := 0
	for i := range list {
		if q.CategoryID != nil && list[i].CategoryID != *q.CategoryID {
			continue
		}
		if q.Limit > 0 && emitted == q.Limit {
			break
		}
		if err := fn(&list[i]); err != nil {
			return err
		}
		emitted++
	}
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	if m.Err != nil {
		return m.Err
	}
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	existing, ok := m.Articles[article.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := m.check(article); err != nil {
		return err
	}
	stored := *article
	stored.PubDate = existing.PubDate
	stored.CategoryName = ""
	m.Articles[article.ID] = &stored
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	return len(m.Articles), m.Err
}

func (m *MockArticleRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	n := 0
	for _, a := range m.Articles {
		if a.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}
