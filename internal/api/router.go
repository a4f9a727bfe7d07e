package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/blog-cms/internal/admin"
	"github.com/blog-cms/internal/config"
	"github.com/blog-cms/internal/metrics"
	"github.com/blog-cms/internal/service"
	"github.com/blog-cms/internal/validation"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, db HealthChecker, cfg *config.Config, log zerolog.Logger) (*gin.Engine, error) {
	// Set Gin mode
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.UseFormTagNames(v)
	}

	router := gin.New()

	// Middleware
	router.Use(requestIDMiddleware())
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	// Handlers
	siteHandler := NewSiteHandler(services, log)
	postHandler := NewPostHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public site
	router.GET("/", siteHandler.Index)
	router.GET("/blog", siteHandler.Blog)
	router.GET("/news", siteHandler.News)
	router.GET("/detailed_post/:article_id", siteHandler.Detail)

	// Authoring
	router.GET("/new_post", postHandler.NewForm)
	router.POST("/new_post", postHandler.Create)
	router.GET("/edit/:article_id", postHandler.EditForm)
	router.POST("/edit/:article_id", postHandler.Update)
	router.GET("/delete/:article_id", postHandler.Delete)

	// Admin scaffold
	scaffold := admin.New(log)
	if err := registerAdminResources(scaffold, services); err != nil {
		return nil, err
	}
	scaffold.Mount(router.Group("/admin"))

	router.NoRoute(func(c *gin.Context) {
		renderNotFound(c, "Страница не найдена")
	})

	return router, nil
}

// healthCheck returns the health status
func healthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code, dbStatus := "healthy", http.StatusOK, "ok"
		if err := db.HealthCheck(ctx); err != nil {
			status, code, dbStatus = "unhealthy", http.StatusServiceUnavailable, err.Error()
		}

		c.JSON(code, gin.H{
			"status":    status,
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "blog-cms",
		})
	}
}

// requestIDMiddleware keeps a client supplied request id or assigns a new one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("request_id", c.GetString("request_id")).
					Str("path", c.Request.URL.Path).
					Msg("Panic recovered")
				c.String(http.StatusInternalServerError, "Внутренняя ошибка сервера")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests and records request metrics
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(c.Request.Method, route, statusCode, duration)

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
