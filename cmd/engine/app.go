package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"jobagent-engine/internal/agent"
	"jobagent-engine/internal/board"
	"jobagent-engine/internal/config"
	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/events"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/page"
	"jobagent-engine/internal/ratelimit"
	"jobagent-engine/internal/secrets"
	"jobagent-engine/internal/sponsorship"
	"jobagent-engine/internal/store"
)

// app is everything a command needs, built once from config.
type app struct {
	dataDir string
	cfgPath string
	cfgVal  atomic.Value // config.Config

	log     *logging.Logger
	db      *store.SQLite
	hub     *events.Hub
	board   *board.Board
	limiter *ratelimit.Window
	factory *agent.Factory
	loader  page.Loader
}

func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if v := strings.TrimSpace(os.Getenv(config.EnvDataDir)); v != "" {
		return v
	}
	return "."
}

func setup(ctx context.Context) (*app, error) {
	a := &app{dataDir: resolveDataDir()}
	if err := os.MkdirAll(a.dataDir, 0o755); err != nil {
		return nil, err
	}

	cfgPath, err := config.EnsureUserConfig(a.dataDir)
	if err != nil {
		return nil, fmt.Errorf("config bootstrap failed: %w", err)
	}
	a.cfgPath = cfgPath

	cfg, err := a.loadCfg()
	if err != nil {
		return nil, err
	}
	a.cfgVal.Store(cfg)

	a.log = logging.New(cfg.App.LogLevel)
	a.log.Info("config loaded", "path", cfgPath, "data_dir", a.dataDir)

	dbPath := filepath.Join(a.dataDir, "jobagent.db")
	a.db, err = store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dbPath, err)
	}

	a.hub = events.NewHub()
	a.board = board.New(a.db, a.hub, a.log)
	a.limiter = ratelimit.New(cfg.Enrichment.RateLimit.MaxPerWindow, cfg.RateWindow())

	clientID, err := store.ClientID(ctx, a.db)
	if err != nil {
		a.log.Warn("client id unavailable", "err", err)
	}

	// Endpoint, window and timings are read from the live config on every
	// session; the static token stays bound to the startup endpoint.
	a.factory = &agent.Factory{
		Enrichment: sponsorship.Options{
			BaseURL:  cfg.Enrichment.ConvexURL,
			ClientID: clientID,
			Token:    a.enrichmentToken(cfg.Enrichment.ConvexURL),
		},
		Config:   a.cfg,
		Keyring:  secrets.Default,
		Board:    a.board,
		Notifier: a.hub,
		Log:      a.log,
	}

	if cfg.Fetch.UseBrowser || useBrowser {
		a.loader = page.BrowserLoader{Timeout: cfg.FetchTimeout()}
	} else {
		a.loader = page.NewFetcher(page.NewHostLimiter(cfg.Fetch.ReqPerSec, cfg.Fetch.Burst), cfg.FetchTimeout())
	}
	return a, nil
}

// loadCfg reads the user config, applies env overrides and validates.
func (a *app) loadCfg() (config.Config, error) {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config load failed (%s): %w", a.cfgPath, err)
	}
	config.OverlayEnv(&cfg)

	cfg, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		return config.Config{}, fmt.Errorf("invalid config %s:\n  %s", a.cfgPath, strings.Join(vr.Errors, "\n  "))
	}
	for _, w := range vr.Warnings {
		if a.log != nil {
			a.log.Warn("config warning", "msg", w)
		} else {
			fmt.Fprintln(os.Stderr, "config warning:", w)
		}
	}
	return cfg, nil
}

func (a *app) cfg() config.Config {
	return a.cfgVal.Load().(config.Config)
}

func (a *app) enrichmentToken(convexURL string) string {
	if convexURL == "" {
		return ""
	}
	tok, err := secrets.GetEnrichmentToken(secrets.Default, secrets.EnrichmentAccount(convexURL))
	if err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			a.log.Warn("keychain read failed", "err", err)
		}
		return ""
	}
	return tok
}

func (a *app) settings(ctx context.Context) domain.Settings {
	s, err := store.LoadSettings(ctx, a.db)
	if err != nil {
		a.log.Warn("settings read failed, using defaults", "err", err)
	}
	return s
}

// openPage loads target as a URL, or as a saved HTML file when it exists on
// disk. pageURL names the page a file was saved from.
func (a *app) openPage(ctx context.Context, target, pageURL string) (*page.Page, error) {
	if st, err := os.Stat(target); err == nil && !st.IsDir() {
		return page.FromFile(target, pageURL)
	}
	return page.Load(ctx, a.loader, target)
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func shutdownTimeout() time.Duration { return 5 * time.Second }
