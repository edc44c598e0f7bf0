package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/types"
)

type RunHandler struct {
	CfgVal     *atomic.Value // config.Config
	RunStatus  *atomic.Value // types.RunStatus
	TriggerRun func(ctx context.Context, cfg config.Config) (domain.Result, error)
}

func (h RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusFrom(h.RunStatus))
}

func (h RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	st := statusFrom(h.RunStatus)
	if st.Running {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	st.Running = true
	st.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	st.LastError = ""
	h.RunStatus.Store(st)

	go func() {
		// The run outlives this request; it must not die with it.
		cfg := h.CfgVal.Load().(config.Config)
		res, err := h.TriggerRun(context.Background(), cfg)

		now := time.Now().UTC().Format(time.RFC3339)
		next := statusFrom(h.RunStatus)
		next.Running = false
		next.LastRunID = res.RunID
		next.LastJobs = len(res.Jobs)
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
		}
		h.RunStatus.Store(next)
	}()

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func statusFrom(v *atomic.Value) types.RunStatus {
	if st, ok := v.Load().(types.RunStatus); ok {
		return st
	}
	return types.RunStatus{}
}
