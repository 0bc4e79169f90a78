package main

import (
	"github.com/spf13/cobra"

	"jobagent-engine/internal/autofill"
	"jobagent-engine/internal/page"
)

var autofillPageURL string

var autofillCmd = &cobra.Command{
	Use:   "autofill <form.html>",
	Short: "Fill a saved application form from the stored profile and print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		p, err := page.FromFile(args[0], autofillPageURL)
		if err != nil {
			return err
		}

		log := a.log.Component("autofill")
		listener := autofill.ListenerFunc(func(c autofill.Change) {
			log.Debug("field changed", "event", c.Event, "field", c.Field, "type", c.Type)
		})

		settings := a.settings(ctx)
		n, err := autofill.New(a.cfg().FieldPause(), listener, a.log).Fill(ctx, p, settings.AutofillProfile)
		if err != nil {
			return err
		}
		log.Info("form filled", "fields", n)

		out, err := p.HTML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write([]byte(out))
		return err
	},
}

func init() {
	autofillCmd.Flags().StringVar(&autofillPageURL, "url", "", "URL the form was saved from")
}
