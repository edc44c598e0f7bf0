package httpapi

import (
	"database/sql"
	"net"
	"net/http"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/store"
)

type DBHandler struct {
	DB *sql.DB
}

// Cleanup prunes aged runs from the archive. Local callers only.
func (h DBHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	deleted, err := store.CleanupOldRuns(h.DB)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Compact after the delete; a no-op unless the db runs in WAL mode.
	_, _ = h.DB.Exec(`PRAGMA wal_checkpoint(FULL);`)

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": deleted})
}
