package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yumyai/emgapi/pkg/model"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusOf(model.NotFound("biome", "x")))
	assert.Equal(t, http.StatusBadRequest, statusOf(model.Invalid("lineage %q", "")))
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(model.RelationalError("query", errors.New("locked"))))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
}

func TestWriteErrorHidesStoreDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/biomes", nil)
	writeError(rec, req, model.DocumentError("get", errors.New("value log truncated")))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "truncated")
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
}
