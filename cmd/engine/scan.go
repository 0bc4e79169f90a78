package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobagent-engine/internal/agent"
	"jobagent-engine/internal/domain"
)

var (
	scanMode     string
	scanPageURL  string
	scanWithHTML bool
	scanParallel int
)

type scanResult struct {
	Target  string     `json:"target"`
	Session string     `json:"session,omitempty"`
	Site    string     `json:"site,omitempty"`
	Pass    agent.Pass `json:"pass"`
	HTML    string     `json:"html,omitempty"`
	Error   string     `json:"error,omitempty"`
}

var scanCmd = &cobra.Command{
	Use:   "scan <url|file>...",
	Short: "Scan listing pages once and print the results as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		// Pages scanned together draw on one enrichment window.
		a.factory.Shared = a.limiter
		settings := a.settings(ctx)
		results := make([]scanResult, len(args))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(scanParallel, 1))
		for i, target := range args {
			g.Go(func() error {
				results[i] = a.scanOne(gctx, target, settings)
				return nil
			})
		}
		_ = g.Wait()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func (a *app) scanOne(ctx context.Context, target string, settings domain.Settings) scanResult {
	res := scanResult{Target: target}
	log := a.log.With("target", target)

	p, err := a.openPage(ctx, target, scanPageURL)
	if err != nil {
		log.Error("page load failed", "err", err)
		res.Error = err.Error()
		return res
	}

	s := a.factory.New(p, settings)
	res.Session = s.ID
	res.Site = s.Profile().SiteID

	switch scanMode {
	case "manual":
		_, res.Pass, err = s.ToggleHighlight(ctx)
	default:
		res.Pass, err = s.ScanIncremental(ctx)
	}
	if err != nil {
		log.Warn("scan failed", "err", err)
		res.Error = err.Error()
	}
	if scanWithHTML {
		res.HTML, _ = p.HTML()
	}
	return res
}

func init() {
	scanCmd.Flags().StringVar(&scanMode, "mode", "incremental", "incremental (badges, auto-save) or manual (highlight only)")
	scanCmd.Flags().StringVar(&scanPageURL, "url", "", "page URL for saved HTML files (selects the site profile)")
	scanCmd.Flags().BoolVar(&scanWithHTML, "html", false, "include the annotated HTML in the output")
	scanCmd.Flags().IntVar(&scanParallel, "parallel", 4, "pages scanned at once")
}
