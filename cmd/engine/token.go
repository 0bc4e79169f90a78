package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jobagent-engine/internal/secrets"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the enrichment endpoint token in the OS keychain",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Store the bearer token for the configured enrichment endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		account, err := a.tokenAccount()
		if err != nil {
			return err
		}
		if err := secrets.SetEnrichmentToken(secrets.Default, account, strings.TrimSpace(args[0])); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "stored", account)
		return nil
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored enrichment token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		account, err := a.tokenAccount()
		if err != nil {
			return err
		}
		return secrets.DeleteEnrichmentToken(secrets.Default, account)
	},
}

func (a *app) tokenAccount() (string, error) {
	u := a.cfg().Enrichment.ConvexURL
	if u == "" {
		return "", errors.New("enrichment.convex_url is not configured")
	}
	return secrets.EnrichmentAccount(u), nil
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd, tokenDeleteCmd)
}
