package benchmark

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-cms/internal/api"
	"github.com/blog-cms/internal/config"
	"github.com/blog-cms/internal/database"
	"github.com/blog-cms/internal/mocks"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/blog-cms/internal/service"
)

const articleCount = 1000

// seededDB opens an in-memory sqlite database holding articleCount articles
func seededDB(b *testing.B) (*database.DB, *repository.Repositories) {
	b.Helper()

	db, err := database.New(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, zerolog.Nop())
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(); err != nil {
		b.Fatal(err)
	}

	repos := repository.New(db)
	ctx := context.Background()
	category := &models.Category{Name: models.CategoryBlog}
	if err := repos.Category.Create(ctx, category); err != nil {
		b.Fatal(err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < articleCount; i++ {
		err := repos.Article.Create(ctx, &models.Article{
			CategoryID:   category.ID,
			Title:        fmt.Sprintf("Article %04d", i),
			Introduction: "Benchmark introduction",
			Text:         "Benchmark body text",
			PubDate:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			b.Fatal(err)
		}
	}
	return db, repos
}

// BenchmarkLatestQuery benchmarks the index query against sqlite
func BenchmarkLatestQuery(b *testing.B) {
	_, repos := seededDB(b)
	ctx := context.Background()
	q := repository.ArticleQuery{Order: repository.OrderPubDateDesc, Limit: models.LatestArticlesLimit}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := repos.Article.Query(ctx, q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEachArticles benchmarks streaming every article
func BenchmarkEachArticles(b *testing.B) {
	_, repos := seededDB(b)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		count := 0
		err := repos.Article.Each(ctx, repository.ArticleQuery{}, func(*models.Article) error {
			count++
			return nil
		})
		if err != nil || count != articleCount {
			b.Fatalf("streamed %d articles: %v", count, err)
		}
	}

	b.ReportMetric(float64(articleCount*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkIndexHandler benchmarks rendering the index page end to end
func BenchmarkIndexHandler(b *testing.B) {
	db, repos := seededDB(b)
	cfg := &config.Config{Server: config.ServerConfig{Mode: gin.ReleaseMode}}
	router, err := api.NewRouter(service.NewServices(repos, nil, zerolog.Nop()), db, cfg, zerolog.Nop())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}

// BenchmarkMockQuery is the in-memory baseline for BenchmarkLatestQuery
func BenchmarkMockQuery(b *testing.B) {
	repos, categories, articles := mocks.NewMockRepositories()
	ctx := context.Background()
	category := &models.Category{Name: models.CategoryBlog}
	_ = categories.Create(ctx, category)
	for i := 0; i < articleCount; i++ {
		_ = articles.Create(ctx, &models.Article{CategoryID: category.ID, Title: fmt.Sprintf("Article %04d", i)})
	}
	q := repository.ArticleQuery{Order: repository.OrderPubDateDesc, Limit: models.LatestArticlesLimit}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := repos.Article.Query(ctx, q); err != nil {
			b.Fatal(err)
		}
	}
}
