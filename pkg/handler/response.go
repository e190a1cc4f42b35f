package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/emgapi/logger"
	"github.com/yumyai/emgapi/pkg/handler/request"
	"github.com/yumyai/emgapi/pkg/middle"
	"github.com/yumyai/emgapi/pkg/model"
)

type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Count int `json:"count"`
}

type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Cannot encode response", zap.Error(err))
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Data: data})
}

func writePage[T any](w http.ResponseWriter, page model.Page[T], pr request.PageRequest) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, Response{
		Data: items,
		Meta: &Meta{Pagination: &Pagination{
			Page:  pr.Page,
			Pages: pr.Pages(page.Count),
			Count: page.Count,
		}},
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps the core error kinds onto HTTP statuses. Store failures
// are logged here and reported without their detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		middle.Logger(r.Context(), logger.Named("handler")).Error("Request failed",
			zap.String("path", r.URL.EscapedPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{Status: "error", Error: msg})
}

func (dbctx *DBContext) pageRequest(r *http.Request) request.PageRequest {
	size := dbctx.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	return request.NewPageRequest(r.URL.Query(), size, maxPageSize)
}
