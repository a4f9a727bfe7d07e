package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blog-cms/internal/events"
	"github.com/blog-cms/internal/metrics"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	categories repository.CategoryRepository
	articles   repository.ArticleRepository
	publisher  events.Publisher
	log        zerolog.Logger
	now        func() time.Time
}

func newArticleService(repos *repository.Repositories, publisher events.Publisher, log zerolog.Logger) *articleService {
	return &articleService{
		categories: repos.Category,
		articles:   repos.Article,
		publisher:  publisher,
		log:        log.With().Str("service", "article").Logger(),
		now:        time.Now,
	}
}

// Latest returns the newest articles, at most models.LatestArticlesLimit
func (s *articleService) Latest(ctx context.Context) ([]models.Article, error) {
	return s.articles.Query(ctx, repository.ArticleQuery{
		Order: repository.OrderPubDateDesc,
		Limit: models.LatestArticlesLimit,
	})
}

// ListByCategoryName returns the articles of the category with exactly this name
func (s *articleService) ListByCategoryName(ctx context.Context, name string) ([]models.Article, error) {
	category, err := s.categories.GetByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotConfigured, name)
	}
	if err != nil {
		return nil, err
	}
	return s.articles.Query(ctx, repository.ArticleQuery{CategoryID: &category.ID})
}

func (s *articleService) List(ctx context.Context) ([]models.Article, error) {
	return s.articles.Query(ctx, repository.ArticleQuery{})
}

func (s *articleService) Get(ctx context.Context, id int64) (*models.Article, error) {
	return s.articles.GetByID(ctx, id)
}

func (s *articleService) Count(ctx context.Context) (int, error) {
	return s.articles.Count(ctx)
}

// Create publishes a new article dated now. If the committed row cannot be
// reloaded the article is returned without its category name.
func (s *articleService) Create(ctx context.Context, in models.ArticleInput) (*models.Article, error) {
	article := &models.Article{PubDate: s.now().UTC().Truncate(time.Microsecond)}
	in.Apply(article)

	err := s.articles.Create(ctx, article)
	metrics.RecordArticleWrite(string(events.ActionCreate), err)
	if err != nil {
		return nil, err
	}

	created, err := s.articles.GetByID(ctx, article.ID)
	if err != nil {
		s.log.Warn().Err(err).Int64("article_id", article.ID).Msg("Failed to reload created article")
		created = article
	}

	s.log.Info().Int64("article_id", created.ID).Str("title", created.Title).Msg("Article created")
	s.publish(ctx, events.ActionCreate, *created)
	return created, nil
}

// Update overwrites the editable fields of an article, keeping its pub date
func (s *articleService) Update(ctx context.Context, id int64, in models.ArticleInput) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(article)

	err = s.articles.Update(ctx, article)
	metrics.RecordArticleWrite(string(events.ActionUpdate), err)
	if err != nil {
		return nil, err
	}

	updated, err := s.articles.GetByID(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Int64("article_id", id).Msg("Failed to reload updated article")
		article.CategoryName = ""
		updated = article
	}

	s.log.Info().Int64("article_id", id).Msg("Article updated")
	s.publish(ctx, events.ActionUpdate, *updated)
	return updated, nil
}

// Delete permanently removes an article
func (s *articleService) Delete(ctx context.Context, id int64) error {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.articles.Delete(ctx, id)
	metrics.RecordArticleWrite(string(events.ActionDelete), err)
	if err != nil {
		return err
	}

	s.log.Info().Int64("article_id", id).Msg("Article deleted")
	s.publish(ctx, events.ActionDelete, *article)
	return nil
}

// publish never fails the caller: the write has already committed
func (s *articleService) publish(ctx context.Context, action events.Action, article models.Article) {
	if err := s.publisher.Publish(ctx, events.NewArticleEvent(action, article)); err != nil {
		metrics.EventPublishFailures.Inc()
		s.log.Warn().Err(err).
			Int64("article_id", article.ID).
			Str("action", string(action)).
			Msg("Failed to publish article event")
	}
}
