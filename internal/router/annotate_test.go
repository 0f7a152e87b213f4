package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/annolab/imagejudge/internal/apperr"
	"github.com/annolab/imagejudge/internal/domain"
	"github.com/annolab/imagejudge/internal/session"
	"github.com/annolab/imagejudge/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, store storage.Store, opts ...AnnotateRouterOption) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()

	schema := domain.NewQuestionSchema([]domain.Question{
		{Text: "Is the edit coherent?", Domain: domain.FivePointScale},
		{Text: "Any artifacts?", Domain: domain.TriageScale},
	})
	NewAnnotateRouter(e, session.NewManager(), store, schema, opts...).Bind()
	return e
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, target string, files []formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func createAdHocSession(t *testing.T, e *echo.Echo, names ...string) sessionResponse {
	t.Helper()
	files := make([]formFile, len(names))
	for i, n := range names {
		files[i] = formFile{field: "images", name: n, data: []byte("png-bytes-" + n)}
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "/sessions", files))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func submitJSON(t *testing.T, e *echo.Echo, id uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/sessions/%s/submit", id), strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateSession_AdHoc(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())

	resp := createAdHocSession(t, e, "first.png", "second.png")
	assert.Equal(t, session.StatePresenting, resp.State)
	assert.Equal(t, 0, resp.Index)
	assert.Equal(t, 2, resp.Total)
}

func TestCreateSession_RequiresInput(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "/sessions", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSession_EmptyDeclaredListRejected(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "/sessions", []formFile{
		{field: "tasks", name: "tasks.json", data: []byte(`[]`)},
		{field: "images", name: "a.png", data: []byte("x")},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty task list")
}

func TestCreateSession_MalformedDeclaredListRejected(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "/sessions", []formFile{
		{field: "tasks", name: "tasks.json", data: []byte(`[{"prompt": "no image"}]`)},
		{field: "images", name: "a.png", data: []byte("x")},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "image_path")
}

func TestCurrentItem_ReturnsQuestions(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())
	resp := createAdHocSession(t, e, "first.png")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/sessions/%s/current", resp.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var current currentItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	assert.Equal(t, "first.png", current.Image)
	assert.Equal(t, 1, current.Total)
	require.Len(t, current.Questions, 2)
	assert.Equal(t, "Is the edit coherent?", current.Questions[0].Text)
}

func TestCurrentImage_ServesUploadedBytes(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())
	resp := createAdHocSession(t, e, "first.png")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/sessions/%s/image", resp.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes-first.png", rec.Body.String())
}

func TestCurrentImage_MissingUploadIs404(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, "/sessions", []formFile{
		{field: "tasks", name: "tasks.json", data: []byte(`[{"image_path": "renders/a.png", "prompt": "p"}]`)},
		{field: "images", name: "unrelated.png", data: []byte("x")},
	}))
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/sessions/%s/image", resp.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "a.png")
}

func TestSubmit_FullSessionPersistsAndExports(t *testing.T) {
	store := storage.NewInMemStore()
	e := newTestRouter(t, store)
	resp := createAdHocSession(t, e, "first.png", "second.png")

	rec := submitJSON(t, e, resp.ID, `{
		"prompt": "a cat in the rain",
		"responses": {"Is the edit coherent?": "4", "Any artifacts?": "No"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tr session.Transition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	assert.Equal(t, session.StatePresenting, tr.State)
	assert.Equal(t, 1, tr.Index)
	assert.True(t, tr.NeedsRender)

	rec = submitJSON(t, e, resp.ID, `{
		"prompt": "a dog on a beach",
		"responses": {"Is the edit coherent?": "2", "Any artifacts?": "Yes"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	assert.Equal(t, session.StateIdle, tr.State)

	// The finished session is gone.
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/sessions/%s/current", resp.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "image_name,prompt,Is the edit coherent?,Any artifacts?", lines[0])
	assert.Equal(t, "first.png,a cat in the rain,4,No", lines[1])
	assert.Equal(t, "second.png,a dog on a beach,2,Yes", lines[2])
}

func TestSubmit_OutOfDomainAnswerIs400(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())
	resp := createAdHocSession(t, e, "first.png")

	rec := submitJSON(t, e, resp.ID, `{"responses": {"Is the edit coherent?": "42"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "schema error")
}

func TestSubmit_StrictModeRejectsIncomplete(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore(), WithStrictSubmissions())
	resp := createAdHocSession(t, e, "first.png")

	rec := submitJSON(t, e, resp.ID, `{"responses": {"Is the edit coherent?": "4"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "incomplete submission")
}

func TestCancel_DiscardsBufferedRecords(t *testing.T) {
	store := storage.NewInMemStore()
	e := newTestRouter(t, store)
	resp := createAdHocSession(t, e, "first.png", "second.png")

	rec := submitJSON(t, e, resp.ID, `{"responses": {"Is the edit coherent?": "4", "Any artifacts?": "No"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/sessions/%s/cancel", resp.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	records, err := store.ReadAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSession_UnknownIdIs404(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+uuid.NewString()+"/current", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSession_MalformedIdIs400(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid/current", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_EmptyStoreStillHasHeader(t *testing.T) {
	e := newTestRouter(t, storage.NewInMemStore())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image_name,prompt\n", rec.Body.String())
}
