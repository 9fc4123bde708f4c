package cmd

import (
	"fmt"

	"github.com/SscSPs/prompt_books/internal/core/services"
	"github.com/SscSPs/prompt_books/internal/platform/config"
	"github.com/spf13/cobra"
)

var (
	chartTenant string
	chartActor  string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Manage a tenant's chart of accounts",
}

var chartSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default accounts a tenant is missing",
	Long: `Creates every account of the default chart whose code the tenant does not have yet.
Existing accounts are left untouched, so running it twice is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		repos, closeRepos, err := openRepositories(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeRepos()

		container := services.NewServiceContainer(repos, nil)
		created, err := container.Account.EnsureDefaultChart(cmd.Context(), chartTenant, chartActor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d account(s) for tenant %s\n", created, chartTenant)
		return nil
	},
}

func init() {
	chartSeedCmd.Flags().StringVar(&chartTenant, "tenant", "", "tenant to seed")
	chartSeedCmd.Flags().StringVar(&chartActor, "actor", "booksctl", "user recorded as creator")
	_ = chartSeedCmd.MarkFlagRequired("tenant")
	chartCmd.AddCommand(chartSeedCmd)
}
