package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

type HealthHandler struct {
	DB *sql.DB
}

// Health reports liveness and whether the archive db answers a ping.
// Always 200; a dead archive degrades /runs but the API stays up.
func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := false
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		dbOK = h.DB.PingContext(ctx) == nil
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"ok": true,
		"db": dbOK,
	})
}
