package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobagent-engine/internal/page"
)

var watchEvery time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <url>",
	Short: "Keep a listing page annotated, rescanning as it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		settings := a.settings(ctx)
		if !settings.UKFiltersEnabled {
			return errors.New("UK filters are disabled in settings; nothing to watch")
		}

		p, err := page.Load(ctx, a.loader, args[0])
		if err != nil {
			return err
		}
		s := a.factory.New(p, settings)

		interval := watchEvery
		if interval <= 0 {
			interval = a.cfg().PollInterval()
		}
		a.log.Info("watching", "url", args[0], "session", s.ID, "site", s.Profile().SiteID, "every", interval.String())

		go page.Watch(ctx, p, a.loader, interval, a.log)
		if err := s.Run(ctx); err != nil {
			return err
		}

		a.log.Info("watch stopped", "records", len(s.Records()))
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchEvery, "every", 0, "reload interval (default scan.poll_seconds)")
}
