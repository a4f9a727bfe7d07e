package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/blog-cms/internal/service"
	"github.com/blog-cms/internal/validation"
)

// PostForm is the submitted new/edit post form
type PostForm struct {
	CategoryID   int64  `form:"category_select" binding:"required,min=1"`
	Title        string `form:"title" binding:"required,max=50"`
	Introduction string `form:"introduction" binding:"required,max=100"`
	Text         string `form:"article_text" binding:"required"`
}

// Input converts the form to the service input
func (f PostForm) Input() models.ArticleInput {
	return models.ArticleInput{
		CategoryID:   f.CategoryID,
		Title:        f.Title,
		Introduction: f.Introduction,
		Text:         f.Text,
	}
}

func formFromArticle(a *models.Article) PostForm {
	return PostForm{
		CategoryID:   a.CategoryID,
		Title:        a.Title,
		Introduction: a.Introduction,
		Text:         a.Text,
	}
}

// PostHandler handles the authoring pages
type PostHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(services *service.Services, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		services: services,
		log:      log.With().Str("handler", "post").Logger(),
	}
}

// NewForm handles GET /new_post
func (h *PostHandler) NewForm(c *gin.Context) {
	h.renderForm(c, "Новая запись", "/new_post", PostForm{})
}

// Create handles POST /new_post
func (h *PostHandler) Create(c *gin.Context) {
	var form PostForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.invalid(c, err)
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), form.Input())
	if err != nil {
		h.writeFailed(c, err)
		return
	}

	h.log.Info().Int64("article_id", article.ID).Str("request_id", c.GetString("request_id")).Msg("Post created")
	c.Redirect(http.StatusFound, "/")
}

// EditForm handles GET /edit/:article_id
func (h *PostHandler) EditForm(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	article, ok := h.article(c, id)
	if !ok {
		return
	}
	h.renderForm(c, "Редактирование записи", fmt.Sprintf("/edit/%d", id), formFromArticle(article))
}

// Update handles POST /edit/:article_id
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}
	if _, ok := h.article(c, id); !ok {
		return
	}

	var form PostForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.invalid(c, err)
		return
	}

	_, err := h.services.Article.Update(c.Request.Context(), id, form.Input())
	if errors.Is(err, repository.ErrNotFound) {
		renderNotFound(c, "Запись не найдена")
		return
	}
	if err != nil {
		h.writeFailed(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Delete handles GET /delete/:article_id
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	err := h.services.Article.Delete(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		renderNotFound(c, "Запись не найдена")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("article_id", id).Msg("Failed to delete post")
		c.String(http.StatusInternalServerError, "Возникла ошибка при удалении -> %s", err.Error())
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *PostHandler) article(c *gin.Context, id int64) (*models.Article, bool) {
	article, err := h.services.Article.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		renderNotFound(c, "Запись не найдена")
		return nil, false
	}
	if err != nil {
		h.writeFailed(c, err)
		return nil, false
	}
	return article, true
}

func (h *PostHandler) renderForm(c *gin.Context, title, action string, form PostForm) {
	categories, err := h.services.Category.List(c.Request.Context())
	if err != nil {
		h.writeFailed(c, err)
		return
	}

	c.HTML(http.StatusOK, "post_form", gin.H{
		"Title":      title,
		"Action":     action,
		"Categories": categories,
		"Form":       form,
	})
}

func (h *PostHandler) invalid(c *gin.Context, err error) {
	err = validation.FromBinding(err)
	h.log.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("Invalid post form")
	c.String(http.StatusBadRequest, "Некорректные данные формы -> %s", err.Error())
}

// writeFailed reports a failed write: 409 for constraint violations, 500 otherwise
func (h *PostHandler) writeFailed(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, repository.ErrConstraintViolation) {
		status = http.StatusConflict
		h.log.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("Post rejected by constraint")
	} else {
		h.log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("Post write failed")
	}
	c.String(status, "Возникла ошибка! -> %s", err.Error())
}
