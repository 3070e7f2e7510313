package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"c6t/scw"
)

var scwBaseURL string

var scwCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Populate rule references with Secure Code Warrior links.",
	Long: `For every Assess rule, look up its CWE at Secure Code Warrior and replace the
rule references with a training video (when one exists) and one exercise link
per supported language. Rules without any match are left unchanged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSCW(cmd.Context(), "Creating SCW links...", func(ctx context.Context, service *scw.Service) (scw.Summary, error) {
			return service.Create(ctx)
		})
	},
}

var scwDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove Secure Code Warrior links and restore the default references.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSCW(cmd.Context(), "Deleting SCW links...", func(ctx context.Context, service *scw.Service) (scw.Summary, error) {
			return service.Delete(ctx)
		})
	},
}

func runSCW(ctx context.Context, banner string, action func(context.Context, *scw.Service) (scw.Summary, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rules, err := profileAPIClient(cfg, integrationsProfile)
	if err != nil {
		return err
	}
	trainings, err := scw.NewClient(scw.ClientConfig{
		BaseURL:   scwBaseURL,
		UserAgent: cfg.TeamServer.UserAgent,
		Timeout:   cfg.TeamServer.Timeout,
	})
	if err != nil {
		return err
	}

	printNotice("%s", banner)
	summary, err := action(ctx, scw.NewService(rules, trainings, logger, stdout))
	if err != nil {
		return err
	}
	printSuccess("Rules processed: %d, updated: %d, without references: %d", summary.Processed, summary.Updated, summary.Skipped)
	return nil
}

func init() {
	scwCmd.AddCommand(scwCreateCmd)
	scwCmd.AddCommand(scwDeleteCmd)

	scwCmd.PersistentFlags().StringVar(&scwBaseURL, "scw-url", scw.DefaultBaseURL, "Secure Code Warrior integration API URL")
}
