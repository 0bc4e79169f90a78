package httpapi

import (
	"database/sql"
	"sync/atomic"

	"jobagent-engine/internal/agent"
	"jobagent-engine/internal/board"
	"jobagent-engine/internal/config"
	"jobagent-engine/internal/events"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/page"
	"jobagent-engine/internal/ratelimit"
	"jobagent-engine/internal/secrets"
	"jobagent-engine/internal/store"
)

type Deps struct {
	DB  *sql.DB
	KV  store.KV
	Hub *events.Hub
	Log *logging.Logger

	Board    *board.Board
	Sessions *agent.Factory
	// Registry keeps scanned sessions for /sessions/{id}/add/{key}.
	Registry *agent.Registry
	// Limiter is the process-wide window shared by scans and people search.
	Limiter *ratelimit.Window
	// Loader fetches pages for POST /scan {url}.
	Loader  page.Loader
	Keyring secrets.Store

	// Atomic stores
	CfgVal     *atomic.Value // stores config.Config
	ScanStatus *atomic.Value // stores httpapi.ScanStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
