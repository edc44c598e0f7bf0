package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/store"
)

type RunsHandler struct {
	DB *sql.DB
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := store.ListRuns(r.Context(), h.DB, limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h RunsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/runs/"))
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	run, err := store.LoadRun(r.Context(), h.DB, id)
	if errors.Is(err, sql.ErrNoRows) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	jobs, err := store.LoadRunJobs(r.Context(), h.DB, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	fetchErrs, err := store.LoadRunErrors(r.Context(), h.DB, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	writeJSON(w, http.StatusOK, RunDetail{Run: run, Jobs: jobs, Errors: fetchErrs})
}
