package router

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/annolab/imagejudge/internal/apperr"
	"github.com/annolab/imagejudge/internal/domain"
	"github.com/annolab/imagejudge/internal/export"
	"github.com/annolab/imagejudge/internal/session"
	"github.com/annolab/imagejudge/internal/storage"
	"github.com/annolab/imagejudge/internal/tasks"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AnnotateRouterOption func(*AnnotateRouter)

// WithImageRoot enables filesystem sessions: declared task lists without
// uploads resolve their paths under this root.
func WithImageRoot(root string) AnnotateRouterOption {
	return func(r *AnnotateRouter) {
		r.imageRoot = root
	}
}

// WithStrictSubmissions makes every session reject incomplete submissions.
func WithStrictSubmissions() AnnotateRouterOption {
	return func(r *AnnotateRouter) {
		r.strict = true
	}
}

// AnnotateRouter exposes the judgment-collection engine to the UI layer:
// create a session, present the current item, submit answers, cancel, and
// export the store.
type AnnotateRouter struct {
	e       *echo.Echo
	manager *session.Manager
	store   storage.Store
	schema  *domain.QuestionSchema

	imageRoot string
	strict    bool
}

func NewAnnotateRouter(e *echo.Echo, manager *session.Manager, store storage.Store, schema *domain.QuestionSchema, opts ...AnnotateRouterOption) *AnnotateRouter {
	r := &AnnotateRouter{
		e:       e,
		manager: manager,
		store:   store,
		schema:  schema,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *AnnotateRouter) Bind() {
	r.e.POST("/sessions", r.createSessionHandler)
	r.e.GET("/sessions/:id/current", r.currentItemHandler)
	r.e.GET("/sessions/:id/image", r.currentImageHandler)
	r.e.POST("/sessions/:id/submit", r.submitHandler)
	r.e.POST("/sessions/:id/flush", r.flushHandler)
	r.e.POST("/sessions/:id/cancel", r.cancelHandler)
	r.e.GET("/export.csv", r.exportHandler)
}

type sessionResponse struct {
	ID    uuid.UUID     `json:"id"`
	State session.State `json:"state"`
	Index int           `json:"index"`
	Total int           `json:"total"`
}

type currentItemResponse struct {
	Image     string            `json:"image"`
	Prompt    string            `json:"prompt"`
	Index     int               `json:"index"`
	Total     int               `json:"total"`
	Questions []domain.Question `json:"questions"`
}

type submitRequest struct {
	Prompt    string           `json:"prompt"`
	Responses domain.AnswerSet `json:"responses"`
}

// createSessionHandler accepts a multipart form with an optional "tasks"
// JSON file and zero or more "images" files. Tasks plus images is declared
// mode, images alone is ad hoc mode, and tasks alone is filesystem mode.
func (r *AnnotateRouter) createSessionHandler(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperr.NewSchemaWrap("session creation requires a multipart form", err)
	}

	catalog := tasks.NewCatalog()
	for _, fh := range form.File["images"] {
		data, err := readFormFile(fh)
		if err != nil {
			return err
		}
		catalog.Add(fh.Filename, data)
	}

	var items []domain.TaskItem
	var resolver tasks.Resolver
	var navOpts []session.Option
	if r.strict {
		navOpts = append(navOpts, session.WithStrict())
	}

	switch {
	case len(form.File["tasks"]) > 0:
		data, err := readFormFile(form.File["tasks"][0])
		if err != nil {
			return err
		}
		items, err = tasks.Declared(bytes.NewReader(data)).Load()
		if err != nil {
			return err
		}
		if catalog.Len() > 0 {
			resolver = tasks.NewCatalogResolver(catalog)
		} else {
			resolver = tasks.NewFileResolver(r.imageRoot)
			navOpts = append(navOpts, session.WithPathIdentity())
		}

	case catalog.Len() > 0:
		items, err = tasks.AdHoc(catalog).Load()
		if err != nil {
			return err
		}
		resolver = tasks.NewCatalogResolver(catalog)

	default:
		return apperr.NewSchema("session requires a task list or uploaded images")
	}

	nav := session.New(r.schema, r.store, navOpts...)
	if err := nav.Load(items); err != nil {
		return err
	}

	s := r.manager.Create(nav, resolver)
	_, idx, total, err := nav.Current()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sessionResponse{
		ID:    s.ID,
		State: nav.State(),
		Index: idx,
		Total: total,
	})
}

func (r *AnnotateRouter) currentItemHandler(c echo.Context) error {
	s, err := r.session(c)
	if err != nil {
		return err
	}
	item, idx, total, err := s.Navigator.Current()
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, currentItemResponse{
		Image:     item.Ref.DisplayName(),
		Prompt:    item.Prompt,
		Index:     idx,
		Total:     total,
		Questions: s.Navigator.Schema().Questions,
	})
}

func (r *AnnotateRouter) currentImageHandler(c echo.Context) error {
	s, err := r.session(c)
	if err != nil {
		return err
	}
	item, _, _, err := s.Navigator.Current()
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	data, err := s.Resolver.Resolve(item.Ref)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, http.DetectContentType(data), data)
}

func (r *AnnotateRouter) submitHandler(c echo.Context) error {
	s, err := r.session(c)
	if err != nil {
		return err
	}
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewSchemaWrap("malformed submission body", err)
	}

	t, err := s.Navigator.Submit(c.Request().Context(), session.Submission{
		Prompt:    req.Prompt,
		Responses: &req.Responses,
	})
	if err != nil {
		return err
	}
	if t.State == session.StateIdle {
		r.manager.Delete(s.ID)
	}
	return c.JSON(http.StatusOK, t)
}

func (r *AnnotateRouter) flushHandler(c echo.Context) error {
	s, err := r.session(c)
	if err != nil {
		return err
	}
	t, err := s.Navigator.Flush(c.Request().Context())
	if err != nil {
		return err
	}
	if t.State == session.StateIdle {
		r.manager.Delete(s.ID)
	}
	return c.JSON(http.StatusOK, t)
}

func (r *AnnotateRouter) cancelHandler(c echo.Context) error {
	s, err := r.session(c)
	if err != nil {
		return err
	}
	t := s.Navigator.Cancel()
	r.manager.Delete(s.ID)
	return c.JSON(http.StatusOK, t)
}

func (r *AnnotateRouter) exportHandler(c echo.Context) error {
	records, err := r.store.ReadAll(c.Request().Context())
	if err != nil {
		return err
	}
	table := export.Flatten(records)

	var buf bytes.Buffer
	if err := export.WriteCSV(table, &buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="annotations.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (r *AnnotateRouter) session(c echo.Context) (*session.Session, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
	}
	s, ok := r.manager.Get(id)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return s, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "cannot open uploaded file "+fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file "+fh.Filename)
	}
	return data, nil
}
