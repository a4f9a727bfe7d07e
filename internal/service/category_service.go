package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/rs/zerolog"
)

// categoryService is the concrete implementation of CategoryService
type categoryService struct {
	categories repository.CategoryRepository
	articles   repository.ArticleRepository
	log        zerolog.Logger
}

func newCategoryService(repos *repository.Repositories, log zerolog.Logger) *categoryService {
	return &categoryService{
		categories: repos.Category,
		articles:   repos.Article,
		log:        log.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *categoryService) ListWithArticles(ctx context.Context) ([]models.CategoryWithArticles, error) {
	return s.categories.ListWithArticles(ctx)
}

func (s *categoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *categoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.log.Info().Int64("category_id", category.ID).Str("name", name).Msg("Category created")
	return category, nil
}

func (s *categoryService) Rename(ctx context.Context, id int64, name string) (*models.Category, error) {
	category := &models.Category{ID: id, Name: name}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category that no article references
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}

	n, err := s.articles.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w (%d articles)", repository.ErrCategoryInUse, n)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("category_id", id).Msg("Category deleted")
	return nil
}

// Seed creates each named category that does not exist yet and returns how
// many were created
func (s *categoryService) Seed(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		_, err := s.categories.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, fmt.Errorf("look up category %q: %w", name, err)
		}
		if _, err := s.Create(ctx, name); err != nil {
			return created, fmt.Errorf("seed category %q: %w", name, err)
		}
		created++
	}
	return created, nil
}
