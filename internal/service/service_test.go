package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/blog-cms/internal/events"
	eventmocks "github.com/blog-cms/internal/events/mocks"
	"github.com/blog-cms/internal/mocks"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
)

type ArticleServiceTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	publisher  *eventmocks.MockPublisher
	categories *mocks.MockCategoryRepository
	articles   *mocks.MockArticleRepository
	service    *articleService
	blogID     int64
	clock      time.Time
}

func (s *ArticleServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.publisher = eventmocks.NewMockPublisher(s.ctrl)

	repos, categories, articles := mocks.NewMockRepositories()
	s.categories = categories
	s.articles = articles

	blog := &models.Category{Name: models.CategoryBlog}
	s.Require().NoError(categories.Create(context.Background(), blog))
	s.blogID = blog.ID

	s.clock = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	s.service = newArticleService(repos, s.publisher, zerolog.Nop())
	s.service.now = func() time.Time { return s.clock }
}

func TestArticleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArticleServiceTestSuite))
}

func (s *ArticleServiceTestSuite) input(title string) models.ArticleInput {
	return models.ArticleInput{CategoryID: s.blogID, Title: title, Introduction: "i", Text: "t"}
}

func (s *ArticleServiceTestSuite) TestCreate_SetsPubDateAndPublishes() {
	ctx := context.Background()
	s.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Cond(func(e events.ArticleEvent) bool {
			return e.Action == events.ActionCreate && e.Article.Title == "A"
		})).
		Return(nil)

	created, err := s.service.Create(ctx, s.input("A"))
	s.Require().NoError(err)
	s.NotZero(created.ID)
	s.Equal(s.clock, created.PubDate)
	s.Equal(models.CategoryBlog, created.CategoryName)
}

func (s *ArticleServiceTestSuite) TestCreate_DuplicateTitleLeavesStateUnchanged() {
	ctx := context.Background()
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	first, err := s.service.Create(ctx, s.input("A"))
	s.Require().NoError(err)

	_, err = s.service.Create(ctx, models.ArticleInput{CategoryID: s.blogID, Title: "A", Introduction: "other", Text: "other"})
	s.ErrorIs(err, repository.ErrConstraintViolation)

	count, _ := s.service.Count(ctx)
	s.Equal(1, count)
	stored, err := s.service.Get(ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("i", stored.Introduction)
}

func (s *ArticleServiceTestSuite) TestCreate_PublishFailureDoesNotFailWrite() {
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	created, err := s.service.Create(context.Background(), s.input("A"))
	s.NoError(err)
	s.NotNil(created)
}

func (s *ArticleServiceTestSuite) TestCreate_ReloadFailureKeepsCommittedArticle() {
	s.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Cond(func(e events.ArticleEvent) bool {
			return e.Action == events.ActionCreate && e.Article.Title == "A"
		})).
		Return(nil)
	s.articles.GetErr = errors.New("connection reset")

	created, err := s.service.Create(context.Background(), s.input("A"))
	s.Require().NoError(err)
	s.NotZero(created.ID)
	s.Equal(s.clock, created.PubDate)
	s.Empty(created.CategoryName)
	s.Len(s.articles.Articles, 1)
}

func (s *ArticleServiceTestSuite) TestUpdate_KeepsPubDate() {
	ctx := context.Background()
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	created, err := s.service.Create(ctx, s.input("A"))
	s.Require().NoError(err)

	s.clock = s.clock.Add(48 * time.Hour)
	s.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Cond(func(e events.ArticleEvent) bool {
			return e.Action == events.ActionUpdate && e.Article.Title == "B"
		})).
		Return(nil)

	updated, err := s.service.Update(ctx, created.ID, s.input("B"))
	s.Require().NoError(err)
	s.Equal("B", updated.Title)
	s.True(created.PubDate.Equal(updated.PubDate))
}

func (s *ArticleServiceTestSuite) TestUpdate_Missing() {
	_, err := s.service.Update(context.Background(), 404, s.input("B"))
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *ArticleServiceTestSuite) TestDelete() {
	ctx := context.Background()
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	created, err := s.service.Create(ctx, s.input("A"))
	s.Require().NoError(err)

	s.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Cond(func(e events.ArticleEvent) bool {
			return e.Action == events.ActionDelete && e.Article.ID == created.ID
		})).
		Return(nil)
	s.Require().NoError(s.service.Delete(ctx, created.ID))

	_, err = s.service.Get(ctx, created.ID)
	s.ErrorIs(err, repository.ErrNotFound)
	s.ErrorIs(s.service.Delete(ctx, created.ID), repository.ErrNotFound)
}

func (s *ArticleServiceTestSuite) TestLatest_AtMostThreeNewestFirst() {
	ctx := context.Background()
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	latest, err := s.service.Latest(ctx)
	s.Require().NoError(err)
	s.Empty(latest)

	for i, title := range []string{"t0", "t1", "t2", "t3", "t4"} {
		s.clock = time.Date(2024, 6, 1+i, 0, 0, 0, 0, time.UTC)
		_, err := s.service.Create(ctx, s.input(title))
		s.Require().NoError(err)
	}

	latest, err = s.service.Latest(ctx)
	s.Require().NoError(err)
	s.Require().Len(latest, 3)
	s.Equal("t4", latest[0].Title)
	s.Equal("t3", latest[1].Title)
	s.Equal("t2", latest[2].Title)
}

func (s *ArticleServiceTestSuite) TestListByCategoryName() {
	ctx := context.Background()
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	_, err := s.service.Create(ctx, s.input("A"))
	s.Require().NoError(err)

	blog, err := s.service.ListByCategoryName(ctx, models.CategoryBlog)
	s.Require().NoError(err)
	s.Len(blog, 1)

	_, err = s.service.ListByCategoryName(ctx, models.CategoryNews)
	s.ErrorIs(err, ErrCategoryNotConfigured)
}

func TestCategoryService_Seed(t *testing.T) {
	repos, categories, _ := mocks.NewMockRepositories()
	svc := newCategoryService(repos, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CategoryBlog)
	require.NoError(t, err)

	created, err := svc.Seed(ctx, models.DefaultCategories)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Len(t, categories.Categories, 2)

	again, err := svc.Seed(ctx, models.DefaultCategories)
	require.NoError(t, err)
	assert.Zero(t, again, "seeding is idempotent")
}

func TestCategoryService_SeedLookupError(t *testing.T) {
	repos, categories, _ := mocks.NewMockRepositories()
	categories.Err = errors.New("db gone")
	svc := newCategoryService(repos, zerolog.Nop())

	_, err := svc.Seed(context.Background(), models.DefaultCategories)
	assert.ErrorContains(t, err, "db gone")
}

func TestCategoryService_DeleteRefusedWhileReferenced(t *testing.T) {
	repos, _, articles := mocks.NewMockRepositories()
	svc := newCategoryService(repos, zerolog.Nop())
	ctx := context.Background()

	c, err := svc.Create(ctx, models.CategoryNews)
	require.NoError(t, err)
	require.NoError(t, articles.Create(ctx, &models.Article{CategoryID: c.ID, Title: "x", Introduction: "i", Text: "t"}))

	err = svc.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrCategoryInUse)

	for id := range articles.Articles {
		require.NoError(t, articles.Delete(ctx, id))
	}
	assert.NoError(t, svc.Delete(ctx, c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), repository.ErrNotFound)
}

func TestCategoryService_RenameConflict(t *testing.T) {
	repos, _, _ := mocks.NewMockRepositories()
	svc := newCategoryService(repos, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, "A")
	require.NoError(t, err)
	b, err := svc.Create(ctx, "B")
	require.NoError(t, err)

	_, err = svc.Rename(ctx, b.ID, "A")
	assert.ErrorIs(t, err, repository.ErrConstraintViolation)

	renamed, err := svc.Rename(ctx, b.ID, "C")
	require.NoError(t, err)
	assert.Equal(t, "C", renamed.Name)
}

func TestNewServices_DefaultsToNoopPublisher(t *testing.T) {
	repos, _, _ := mocks.NewMockRepositories()
	services := NewServices(repos, nil, zerolog.Nop())

	_, err := services.Category.Create(context.Background(), models.CategoryBlog)
	require.NoError(t, err)
	cats, err := services.Category.List(context.Background())
	require.NoError(t, err)

	_, err = services.Article.Create(context.Background(), models.ArticleInput{CategoryID: cats[0].ID, Title: "A", Introduction: "i", Text: "t"})
	assert.NoError(t, err)
}
