package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blog-cms/internal/database"
	"github.com/blog-cms/internal/models"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// Create inserts a new category and sets its ID
func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := r.db.Rebind(`INSERT INTO category (name) VALUES (?) RETURNING id`)

	if err := r.db.QueryRowxContext(ctx, query, category.Name).Scan(&category.ID); err != nil {
		return classify(err)
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := r.db.GetContext(ctx, &category, r.db.Rebind(`SELECT id, name FROM category WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetByName retrieves a category by its exact name
func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.GetContext(ctx, &category, r.db.Rebind(`SELECT id, name FROM category WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns all categories ordered by name
func (r *categoryRepo) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.db.SelectContext(ctx, &categories, `SELECT id, name FROM category ORDER BY name`); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListWithArticles returns all categories, each with the articles referencing it
func (r *categoryRepo) ListWithArticles(ctx context.Context) ([]models.CategoryWithArticles, error) {
	categories, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var refs []struct {
		models.ArticleRef
		CategoryID int64 `db:"category_id"`
	}
	if err := r.db.SelectContext(ctx, &refs, `SELECT id, title, category_id FROM article ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list article refs: %w", err)
	}

	byCategory := make(map[int64][]models.ArticleRef, len(categories))
	for _, ref := range refs {
		byCategory[ref.CategoryID] = append(byCategory[ref.CategoryID], ref.ArticleRef)
	}

	result := make([]models.CategoryWithArticles, 0, len(categories))
	for _, c := range categories {
		result = append(result, models.CategoryWithArticles{Category: c, Articles: byCategory[c.ID]})
	}
	return result, nil
}

// Update renames an existing category
func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE category SET name = ? WHERE id = ?`), category.Name, category.ID)
	if err != nil {
		return classify(err)
	}
	return expectOneRow(res)
}

// Delete removes a category. Categories that articles still reference are
// refused with ErrCategoryInUse.
func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM category WHERE id = ?`), id)
	if err != nil {
		err = classify(err)
		if IsConstraintKind(err, ConstraintForeignKey) {
			return fmt.Errorf("%w: %w", ErrCategoryInUse, err)
		}
		return err
	}
	return expectOneRow(res)
}

// Count returns the total number of categories
func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM category`)
	return count, err
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
