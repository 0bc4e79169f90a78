package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobagent-engine/internal/httpapi"
	"jobagent-engine/internal/secrets"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API for the desktop UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		// One window for the whole process so every UI scan shares it.
		a.factory.Shared = a.limiter

		var scanStatus atomic.Value
		scanStatus.Store(httpapi.ScanStatus{})

		h := httpapi.Handler(httpapi.Deps{
			DB:          a.db.Pool,
			KV:          a.db,
			Hub:         a.hub,
			Log:         a.log,
			Board:       a.board,
			Sessions:    a.factory,
			Limiter:     a.limiter,
			Loader:      a.loader,
			Keyring:     secrets.Default,
			CfgVal:      &a.cfgVal,
			ScanStatus:  &scanStatus,
			UserCfgPath: a.cfgPath,
			LoadCfg:     a.loadCfg,
		})

		addr := serveAddr
		if addr == "" {
			addr = fmt.Sprintf("127.0.0.1:%d", a.cfg().App.Port)
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		a.log.Info("engine listening", "addr", "http://"+addr, "data_dir", a.dataDir)

		srv := &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout())
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		a.log.Info("engine stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default 127.0.0.1:<app.port>)")
}
