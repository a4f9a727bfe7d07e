package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/blog-cms/internal/service"
)

// SiteHandler serves the public pages
type SiteHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSiteHandler creates a new SiteHandler
func NewSiteHandler(services *service.Services, log zerolog.Logger) *SiteHandler {
	return &SiteHandler{
		services: services,
		log:      log.With().Str("handler", "site").Logger(),
	}
}

// Index handles GET /
func (h *SiteHandler) Index(c *gin.Context) {
	articles, err := h.services.Article.Latest(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to load latest articles")
		return
	}

	c.HTML(http.StatusOK, "index", gin.H{
		"Title":    "Главная",
		"Articles": articles,
	})
}

// Blog handles GET /blog
func (h *SiteHandler) Blog(c *gin.Context) {
	h.category(c, models.CategoryBlog)
}

// News handles GET /news
func (h *SiteHandler) News(c *gin.Context) {
	h.category(c, models.CategoryNews)
}

func (h *SiteHandler) category(c *gin.Context, name string) {
	articles, err := h.services.Article.ListByCategoryName(c.Request.Context(), name)
	if errors.Is(err, service.ErrCategoryNotConfigured) {
		h.log.Warn().Str("category", name).Msg("Category not configured")
		renderNotFound(c, "Категория «"+name+"» не настроена")
		return
	}
	if err != nil {
		h.fail(c, err, "Failed to load category articles")
		return
	}

	c.HTML(http.StatusOK, "category", gin.H{
		"Title":    name,
		"Articles": articles,
	})
}

// Detail handles GET /detailed_post/:article_id
func (h *SiteHandler) Detail(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	article, err := h.services.Article.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		renderNotFound(c, "Запись не найдена")
		return
	}
	if err != nil {
		h.fail(c, err, "Failed to load article")
		return
	}

	c.HTML(http.StatusOK, "detailed_post", gin.H{
		"Title":   article.Title,
		"Article": article,
	})
}

func (h *SiteHandler) fail(c *gin.Context, err error, msg string) {
	h.log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg(msg)
	c.String(http.StatusInternalServerError, "Возникла ошибка! -> %s", err.Error())
}

// articleID parses the article_id path parameter, rendering 404 when it is
// not an integer
func articleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("article_id"), 10, 64)
	if err != nil {
		renderNotFound(c, "Запись не найдена")
		return 0, false
	}
	return id, true
}
