// Handler for miscellaneous endpoints such as health check

package handler

import (
	"context"
	"net/http"
	"time"
)

type HealthResponse struct {
	Health    string            `json:"health"`
	Stores    map[string]string `json:"stores"`
	Timestamp time.Time         `json:"timestamp"`
}

const healthTimeout = 2 * time.Second

// HealthCheck pings both stores. The service is "degraded" when either
// cannot answer.
func (dbctx *DBContext) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	response := HealthResponse{
		Health:    "ok",
		Stores:    map[string]string{"relational": "ok", "document": "ok"},
		Timestamp: time.Now(),
	}
	status := http.StatusOK

	if err := dbctx.Stores.SQL.DB.PingContext(ctx); err != nil {
		response.Stores["relational"] = err.Error()
		response.Health = "degraded"
		status = http.StatusServiceUnavailable
	}
	if dbctx.Stores.Docs.IsClosed() {
		response.Stores["document"] = "closed"
		response.Health = "degraded"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}
