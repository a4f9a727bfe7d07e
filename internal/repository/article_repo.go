package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/blog-cms/internal/database"
	"github.com/blog-cms/internal/models"
)

const articleColumns = `a.id, a.category_id, c.name AS category_name, a.title, a.introduction, a.text, a.pub_date`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db  *database.DB
	now func() time.Time
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db, now: time.Now}
}

// Create inserts a new article and sets its ID. A zero PubDate is set to the
// current time in UTC.
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	if article.PubDate.IsZero() {
		// microseconds: the finest precision both backends keep
		article.PubDate = r.now().UTC().Truncate(time.Microsecond)
	}

	query := r.db.Rebind(`
		INSERT INTO article (category_id, title, introduction, text, pub_date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		article.CategoryID, article.Title, article.Introduction, article.Text, article.PubDate,
	).Scan(&article.ID)
	if err != nil {
		return classify(err)
	}
	return nil
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	query := r.db.Rebind(`
		SELECT ` + articleColumns + `
		FROM article a JOIN category c ON c.id = a.category_id
		WHERE a.id = ?
	`)

	var article models.Article
	err := r.db.GetContext(ctx, &article, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	article.PubDate = article.PubDate.UTC()
	return &article, nil
}

// Query returns every article matching q
func (r *articleRepo) Query(ctx context.Context, q ArticleQuery) ([]models.Article, error) {
	articles := []models.Article{}
	err := r.Each(ctx, q, func(a *models.Article) error {
		articles = append(articles, *a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// Each streams the articles matching q to fn, stopping at the first error fn
// returns. Every call runs the query again. fn must not call back into the
// repository: the sqlite backend has a single connection, held by the cursor.
func (r *articleRepo) Each(ctx context.Context, q ArticleQuery, fn func(*models.Article) error) error {
	query, args := buildArticleQuery(q)

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var article models.Article
		if err := rows.StructScan(&article); err != nil {
			return err
		}
		article.PubDate = article.PubDate.UTC()

		if err := fn(&article); err != nil {
			return err
		}
	}

	return rows.Err()
}

func buildArticleQuery(q ArticleQuery) (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	sb.WriteString(`SELECT ` + articleColumns + ` FROM article a JOIN category c ON c.id = a.category_id`)
	if q.CategoryID != nil {
		sb.WriteString(` WHERE a.category_id = ?`)
		args = append(args, *q.CategoryID)
	}

	switch q.Order {
	case OrderPubDateDesc:
		sb.WriteString(` ORDER BY a.pub_date DESC, a.id DESC`)
	default:
		sb.WriteString(` ORDER BY a.id`)
	}

	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	return sb.String(), args
}

// Update overwrites the editable fields of an existing article. PubDate is never changed.
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := r.db.Rebind(`
		UPDATE article SET category_id = ?, title = ?, introduction = ?, text = ?
		WHERE id = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		article.CategoryID, article.Title, article.Introduction, article.Text, article.ID,
	)
	if err != nil {
		return classify(err)
	}
	return expectOneRow(res)
}

// Delete permanently removes an article
func (r *articleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM article WHERE id = ?`), id)
	if err != nil {
		return classify(err)
	}
	return expectOneRow(res)
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM article`)
	return count, err
}

// CountByCategory returns the number of articles referencing a category
func (r *articleRepo) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM article WHERE category_id = ?`), categoryID)
	return count, err
}
