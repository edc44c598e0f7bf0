package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/events"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal    *atomic.Value // stores config.Config
	RunStatus *atomic.Value // stores types.RunStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Pipeline entrypoint (inject for testability)
	TriggerRun func(ctx context.Context, cfg config.Config) (domain.Result, error)
}
