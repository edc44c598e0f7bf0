package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/config"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/events"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/httpapi"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/poll"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/types"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/store"
)

func main() {
	var (
		serve    = flag.Bool("serve", false, "run the HTTP API and poll loop instead of a single run")
		jsonOut  = flag.Bool("json", false, "print the run result as JSON on stdout (single-run mode)")
		dataFlag = flag.String("data", "", "data directory (overrides SCRAPER_DATA_DIR)")
		cfgFlag  = flag.String("config", "", "config file path (default <data>/config.yml)")
	)
	flag.Parse()

	dataDir := *dataFlag
	if dataDir == "" {
		dataDir = os.Getenv("SCRAPER_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	userCfgPath := *cfgFlag
	if userCfgPath == "" {
		var err error
		userCfgPath, err = config.EnsureUserConfig(dataDir)
		if err != nil {
			log.Fatalf("config bootstrap failed: %v", err)
		}
	}

	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return config.Config{}, err
		}
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, msg := range vr.Warnings {
			log.Printf("[config] warning: %s", msg)
		}
		if !vr.OK() {
			return config.Config{}, fmt.Errorf("invalid config: %s", strings.Join(vr.Errors, "; "))
		}
		return normalized, nil
	}

	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	fl, err := store.AcquireLock(dataDir)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = fl.Unlock() }()

	dbPath := filepath.Join(dataDir, "scraper.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()

	if !*serve {
		res, runErr := poll.RunOnce(context.Background(), db.Pool, cfg, hub)
		printSummary(res)
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(res)
		}
		if runErr != nil {
			log.Printf("run failed: %v", runErr)
			os.Exit(1)
		}
		return
	}

	var status atomic.Value // stores types.RunStatus
	status.Store(types.RunStatus{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poll.StartPoller(ctx, db.Pool, &cfgVal, &status, hub)

	deps := httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		CfgVal:      &cfgVal,
		RunStatus:   &status,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		TriggerRun: func(ctx context.Context, cfg config.Config) (domain.Result, error) {
			return poll.RunOnce(ctx, db.Pool, cfg, hub)
		},
	}
	mux := httpapi.NewMux(deps)

	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	srv.Handler = httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.AccessLog,
		httpapi.Recover,
		httpapi.Cors,
	)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("scraper api listening on http://%s (db=%s)", addr, dbPath)
	log.Printf("shutdown token: %s", token)

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Printf("bye")
}

func printSummary(res domain.Result) {
	log.Printf("run=%s state=%s raw=%d unique=%d dupes=%d filtered=%d errors=%d timed_out=%v",
		res.RunID, res.State,
		res.Stats.TotalRaw, res.Stats.TotalUnique,
		res.Stats.DuplicatesRemoved, res.Stats.FilteredOut,
		len(res.Errors), res.TimedOut)

	for _, src := range sortedKeys(res.Stats.BySource) {
		log.Printf("  source=%s jobs=%d", src, res.Stats.BySource[domain.Source(src)])
	}
	for _, cat := range sortedStrKeys(res.Stats.ByCategory) {
		log.Printf("  category=%q jobs=%d", cat, res.Stats.ByCategory[cat])
	}
	for _, fe := range res.Errors {
		log.Printf("  error source=%s company=%q kind=%s msg=%s", fe.Source, fe.Company, fe.Kind, fe.Message)
	}
}

func sortedKeys(m map[domain.Source]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

func sortedStrKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shutdownHandler(token *string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Local-only guard
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host != "127.0.0.1" && host != "::1" && host != "localhost" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// Token guard
		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(*token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Respond immediately, then shut down asynchronously
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
