package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GlobalErrorHandler maps the error taxonomy onto HTTP responses. Input and
// submission errors are client faults, unresolvable images are 404s, and a
// corrupt store is a server fault.
func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var se *SchemaError
		if errors.As(err, &se) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": se.Message, "title": "schema error"})
			return
		}

		var etl *EmptyTaskListError
		if errors.As(err, &etl) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": etl.Error(), "title": "empty task list"})
			return
		}

		var is *IncompleteSubmissionError
		if errors.As(err, &is) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": is.Error(), "title": "incomplete submission"})
			return
		}

		var rnf *ResourceNotFoundError
		if errors.As(err, &rnf) {
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": rnf.Error(), "title": "resource not found"})
			return
		}

		var cs *CorruptStoreError
		if errors.As(err, &cs) {
			slog.Error("Store artifact is corrupt", "path", cs.Path, "error", cs.Err)
			_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "record store is corrupt"})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, map[string]string{"error": msg})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
