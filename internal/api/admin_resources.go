package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/blog-cms/internal/admin"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/blog-cms/internal/service"
)

const pubDateLayout = "02.01.2006 15:04:05"

func registerAdminResources(a *admin.Admin, services *service.Services) error {
	categories := &categoryStore{svc: services.Category}
	articles := &articleStore{svc: services.Article}

	err := a.Register(admin.Resource{
		Name:  "category",
		Title: "Категории",
		Fields: []admin.Field{
			{Name: "name", Label: "Название", Kind: admin.KindText, Required: true, MaxLen: models.MaxCategoryNameLen, InList: true},
		},
		Store:        categories,
		CreateModal:  true,
		RelatedLabel: "Записи",
	})
	if err != nil {
		return err
	}

	return a.Register(admin.Resource{
		Name:  "article",
		Title: "Записи",
		Fields: []admin.Field{
			{Name: "category_id", Label: "Категория", Kind: admin.KindSelect, Required: true, InList: true, Options: categories.options},
			{Name: "title", Label: "Заголовок", Kind: admin.KindText, Required: true, MaxLen: models.MaxArticleTitleLen, InList: true},
			{Name: "introduction", Label: "Вступление", Kind: admin.KindText, Required: true, MaxLen: models.MaxArticleIntroductionLen},
			{Name: "text", Label: "Текст", Kind: admin.KindTextarea, Required: true},
			{Name: "pub_date", Label: "Дата публикации", Kind: admin.KindReadOnly, InList: true},
		},
		Store: articles,
	})
}

// adminError maps repository errors onto the scaffold's taxonomy
func adminError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", admin.ErrNotFound, err)
	case errors.Is(err, repository.ErrConstraintViolation), errors.Is(err, repository.ErrCategoryInUse):
		return fmt.Errorf("%w: %w", admin.ErrConflict, err)
	default:
		return err
	}
}

type categoryStore struct {
	svc service.CategoryService
}

func categoryRecord(c models.Category) admin.Record {
	return admin.Record{ID: c.ID, Values: map[string]string{"name": c.Name}}
}

func (s *categoryStore) List(ctx context.Context) ([]admin.Record, error) {
	categories, err := s.svc.ListWithArticles(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]admin.Record, 0, len(categories))
	for _, c := range categories {
		rec := categoryRecord(c.Category)
		for _, a := range c.Articles {
			rec.Related = append(rec.Related, a.Title)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *categoryStore) Get(ctx context.Context, id int64) (*admin.Record, error) {
	c, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, adminError(err)
	}
	rec := categoryRecord(*c)
	return &rec, nil
}

func (s *categoryStore) Create(ctx context.Context, values map[string]string) (int64, error) {
	c, err := s.svc.Create(ctx, values["name"])
	if err != nil {
		return 0, adminError(err)
	}
	return c.ID, nil
}

func (s *categoryStore) Update(ctx context.Context, id int64, values map[string]string) error {
	_, err := s.svc.Rename(ctx, id, values["name"])
	return adminError(err)
}

func (s *categoryStore) Delete(ctx context.Context, id int64) error {
	return adminError(s.svc.Delete(ctx, id))
}

func (s *categoryStore) options(ctx context.Context) ([]admin.Option, error) {
	categories, err := s.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]admin.Option, 0, len(categories))
	for _, c := range categories {
		opts = append(opts, admin.Option{Value: strconv.FormatInt(c.ID, 10), Label: c.Name})
	}
	return opts, nil
}

type articleStore struct {
	svc service.ArticleService
}

func articleRecord(a models.Article) admin.Record {
	return admin.Record{
		ID: a.ID,
		Values: map[string]string{
			"category_id":  strconv.FormatInt(a.CategoryID, 10),
			"title":        a.Title,
			"introduction": a.Introduction,
			"text":         a.Text,
			"pub_date":     a.PubDate.UTC().Format(pubDateLayout),
		},
	}
}

func articleInput(values map[string]string) (models.ArticleInput, error) {
	categoryID, err := strconv.ParseInt(values["category_id"], 10, 64)
	if err != nil {
		return models.ArticleInput{}, fmt.Errorf("%w: category_id must be a number", admin.ErrConflict)
	}
	return models.ArticleInput{
		CategoryID:   categoryID,
		Title:        values["title"],
		Introduction: values["introduction"],
		Text:         values["text"],
	}, nil
}

func (s *articleStore) List(ctx context.Context) ([]admin.Record, error) {
	articles, err := s.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]admin.Record, 0, len(articles))
	for _, a := range articles {
		records = append(records, articleRecord(a))
	}
	return records, nil
}

func (s *articleStore) Get(ctx context.Context, id int64) (*admin.Record, error) {
	a, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, adminError(err)
	}
	rec := articleRecord(*a)
	return &rec, nil
}

func (s *articleStore) Create(ctx context.Context, values map[string]string) (int64, error) {
	in, err := articleInput(values)
	if err != nil {
		return 0, err
	}
	a, err := s.svc.Create(ctx, in)
	if err != nil {
		return 0, adminError(err)
	}
	return a.ID, nil
}

func (s *articleStore) Update(ctx context.Context, id int64, values map[string]string) error {
	in, err := articleInput(values)
	if err != nil {
		return err
	}
	_, err = s.svc.Update(ctx, id, in)
	return adminError(err)
}

func (s *articleStore) Delete(ctx context.Context, id int64) error {
	return adminError(s.svc.Delete(ctx, id))
}
