package admin

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/rs/zerolog"

	"github.com/blog-cms/internal/validation"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Admin serves generic list/create/edit/delete pages for registered resources
type Admin struct {
	resources []*Resource
	byName    map[string]*Resource
	tmpl      *template.Template
	validator *validation.Validator
	base      string
	log       zerolog.Logger
}

// New creates an Admin with no resources
func New(log zerolog.Logger) *Admin {
	return &Admin{
		byName:    make(map[string]*Resource),
		tmpl:      template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		validator: validation.NewValidator(),
		log:       log.With().Str("component", "admin").Logger(),
	}
}

// Register adds a resource. Names must be unique.
func (a *Admin) Register(r Resource) error {
	if err := r.validate(); err != nil {
		return err
	}
	if _, exists := a.byName[r.Name]; exists {
		return fmt.Errorf("resource %q already registered", r.Name)
	}
	res := r
	a.resources = append(a.resources, &res)
	a.byName[r.Name] = &res
	return nil
}

// Mount installs the admin routes on g
func (a *Admin) Mount(g *gin.RouterGroup) {
	a.base = g.BasePath()

	g.GET("/", a.index)
	g.GET("/:resource/", a.list)
	g.GET("/:resource/new", a.newForm)
	g.POST("/:resource/new", a.create)
	g.GET("/:resource/:id/edit", a.editForm)
	g.POST("/:resource/:id/edit", a.update)
	g.POST("/:resource/:id/delete", a.delete)
}

type page struct {
	Base      string
	Resources []*Resource
	Resource  *Resource
	Error     string
}

type fieldView struct {
	Field
	Value   string
	Error   string
	Options []Option
}

func (f fieldView) IsTextarea() bool { return f.Kind == KindTextarea }
func (f fieldView) IsSelect() bool   { return f.Kind == KindSelect }
func (f fieldView) IsReadOnly() bool { return f.Kind == KindReadOnly }

type formView struct {
	page
	Record *Record
	Fields []fieldView
	Action string
}

type rowView struct {
	ID      int64
	Cells   []string
	Related []string
}

type listView struct {
	page
	Columns []Field
	Rows    []rowView
	Create  *formView
}

func (a *Admin) newPage(r *Resource) page {
	return page{Base: a.base, Resources: a.resources, Resource: r}
}

func (a *Admin) render(c *gin.Context, status int, name string, data interface{}) {
	c.Render(status, render.HTML{Template: a.tmpl, Name: name, Data: data})
}

func (a *Admin) renderError(c *gin.Context, status int, msg string) {
	a.render(c, status, "admin_error", struct {
		page
		Status int
	}{page: page{Base: a.base, Resources: a.resources, Error: msg}, Status: status})
}

// storeError maps a store failure to a response. It returns false when the
// caller should re-render its form with the conflict message.
func (a *Admin) storeError(c *gin.Context, r *Resource, err error) bool {
	switch {
	case errors.Is(err, ErrNotFound):
		a.renderError(c, http.StatusNotFound, "Запись не найдена")
		return true
	case errors.Is(err, ErrConflict):
		return false
	default:
		a.log.Error().Err(err).Str("resource", r.Name).Msg("Admin store operation failed")
		a.renderError(c, http.StatusInternalServerError, err.Error())
		return true
	}
}

func (a *Admin) lookup(c *gin.Context) (*Resource, bool) {
	r, ok := a.byName[c.Param("resource")]
	if !ok {
		a.renderError(c, http.StatusNotFound, "Раздел не найден")
		return nil, false
	}
	return r, true
}

func (a *Admin) lookupRecordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		a.renderError(c, http.StatusNotFound, "Запись не найдена")
		return 0, false
	}
	return id, true
}

func (a *Admin) index(c *gin.Context) {
	a.render(c, http.StatusOK, "admin_index", a.newPage(nil))
}

func (a *Admin) list(c *gin.Context) {
	r, ok := a.lookup(c)
	if !ok {
		return
	}
	a.renderList(c, r, http.StatusOK, "")
}

func (a *Admin) renderList(c *gin.Context, r *Resource, status int, errMsg string) {
	ctx := c.Request.Context()

	records, err := r.Store.List(ctx)
	if err != nil {
		a.storeError(c, r, err)
		return
	}

	view := listView{page: a.newPage(r), Columns: r.listFields()}
	view.Error = errMsg

	// select columns show the option label
	labels := make(map[string]map[string]string)
	for _, col := range view.Columns {
		if col.Kind != KindSelect {
			continue
		}
		opts, err := col.Options(ctx)
		if err != nil {
			a.storeError(c, r, err)
			return
		}
		byValue := make(map[string]string, len(opts))
		for _, o := range opts {
			byValue[o.Value] = o.Label
		}
		labels[col.Name] = byValue
	}

	for _, rec := range records {
		row := rowView{ID: rec.ID, Related: rec.Related}
		for _, col := range view.Columns {
			cell := rec.Values[col.Name]
			if label, ok := labels[col.Name][cell]; ok {
				cell = label
			}
			row.Cells = append(row.Cells, cell)
		}
		view.Rows = append(view.Rows, row)
	}

	if r.CreateModal {
		form, err := a.form(c, r, nil, nil, nil)
		if err != nil {
			a.storeError(c, r, err)
			return
		}
		view.Create = form
	}

	a.render(c, status, "admin_list", view)
}

// form builds a form view. values and fieldErrs override the record.
func (a *Admin) form(c *gin.Context, r *Resource, rec *Record, values map[string]string, fieldErrs map[string]string) (*formView, error) {
	ctx := c.Request.Context()

	view := &formView{page: a.newPage(r), Record: rec}
	if rec == nil {
		view.Action = fmt.Sprintf("%s/%s/new", a.base, r.Name)
	} else {
		view.Action = fmt.Sprintf("%s/%s/%d/edit", a.base, r.Name, rec.ID)
	}

	for _, f := range r.Fields {
		if rec == nil && !f.Editable() {
			continue
		}
		fv := fieldView{Field: f, Error: fieldErrs[f.Name]}
		switch {
		case values != nil && f.Editable():
			fv.Value = values[f.Name]
		case rec != nil:
			fv.Value = rec.Values[f.Name]
		}
		if f.Kind == KindSelect {
			opts, err := f.Options(ctx)
			if err != nil {
				return nil, err
			}
			fv.Options = opts
		}
		view.Fields = append(view.Fields, fv)
	}
	return view, nil
}

func (a *Admin) renderForm(c *gin.Context, r *Resource, status int, rec *Record, values map[string]string, fieldErrs map[string]string, errMsg string) {
	view, err := a.form(c, r, rec, values, fieldErrs)
	if err != nil {
		a.storeError(c, r, err)
		return
	}
	view.Error = errMsg
	a.render(c, status, "admin_form", view)
}

// bind reads the editable fields from the submitted form and checks them
// against the schema
func (a *Admin) bind(c *gin.Context, r *Resource) (map[string]string, map[string]string, error) {
	values := make(map[string]string)
	fieldErrs := make(map[string]string)

	for _, f := range r.Fields {
		if !f.Editable() {
			continue
		}
		v := c.PostForm(f.Name)
		values[f.Name] = v

		if fe := a.validator.Text(f.Name, v, f.Required, f.MaxLen); fe != nil {
			fieldErrs[f.Name] = fe.Message
			continue
		}
		if f.Kind == KindSelect && v != "" {
			opts, err := f.Options(c.Request.Context())
			if err != nil {
				return nil, nil, err
			}
			if !hasOption(opts, v) {
				fieldErrs[f.Name] = fmt.Sprintf("%s is not a valid choice", f.Name)
			}
		}
	}
	return values, fieldErrs, nil
}

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

func (a *Admin) newForm(c *gin.Context) {
	r, ok := a.lookup(c)
	if !ok {
		return
	}
	a.renderForm(c, r, http.StatusOK, nil, nil, nil, "")
}

func (a *Admin) create(c *gin.Context) {
	r, ok := a.lookup(c)
	if !ok {
		return
	}

	values, fieldErrs, err := a.bind(c, r)
	if err != nil {
		a.storeError(c, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		a.renderForm(c, r, http.StatusUnprocessableEntity, nil, values, fieldErrs, "")
		return
	}

	id, err := r.Store.Create(c.Request.Context(), values)
	if err != nil {
		if !a.storeError(c, r, err) {
			a.renderForm(c, r, http.StatusConflict, nil, values, nil, err.Error())
		}
		return
	}

	a.log.Info().Str("resource", r.Name).Int64("id", id).Msg("Record created")
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/%s/", a.base, r.Name))
}

func (a *Admin) editForm(c *gin.Context) {
	r, ok := a.lookup(c)
	if !ok {
		return
	}
	id, ok := a.lookupRecordID(c)
	if !ok {
		return
	}

	rec, err := r.Store.Get(c.Request.Context(), id)
	if err != nil {
		a.storeError(c, r, err)
		return
	}
	a.renderForm(c, r, http.StatusOK, rec, nil, nil, "")
}

func (a *Admin) update(c *gin.Context) {
	r, ok := a.lookup(c)
	if !ok {
		return
	}
	id, ok := a.lookupRecordID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	rec, err := r.Store.Get(ctx, id)
	if err != nil {
		a.storeError(c, r, err)
		return
	}

	values, fieldErrs, err := a.bind(c, r)
	if err != nil {
		a.storeError(c, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		a.renderForm(c, r, http.StatusUnprocessableEntity, rec, values, fieldErrs, "")
		return
	}

	if err := r.Store.Update(ctx, id, values); err != nil {
		if !a.storeError(c, r, err) {
			a.renderForm(c, r, http.StatusConflict, rec, values, nil, err.Error())
		}
		return
	}

	a.log.Info().Str("resource", r.Name).Int64("id", id).Msg("Record updated")
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/%s/", a.base, r.Name))
}

func (a *Admin) delete(c *gin.Context) {
	r, ok := a.lookup(c)
	if !ok {
		return
	}
	id, ok := a.lookupRecordID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := r.Store.Delete(ctx, id); err != nil {
		if !a.storeError(c, r, err) {
			rec, getErr := r.Store.Get(ctx, id)
			if getErr != nil {
				a.storeError(c, r, getErr)
				return
			}
			a.renderForm(c, r, http.StatusConflict, rec, nil, nil, err.Error())
		}
		return
	}

	a.log.Info().Str("resource", r.Name).Int64("id", id).Msg("Record deleted")
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/%s/", a.base, r.Name))
}
