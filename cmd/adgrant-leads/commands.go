package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AtRiskMedia/adgrant-leads/internal/application/services"
	"github.com/AtRiskMedia/adgrant-leads/internal/application/startup"
	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
	"github.com/AtRiskMedia/adgrant-leads/pkg/config"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	purgeDays     int
	tokenLeadID   string
	tokenCampaign string

	rootCmd = &cobra.Command{
		Use:   "adgrant-leads",
		Short: "Lead capture and campaign download service for Ad Grant AI",
		RunE:  runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default when no command is given)",
		RunE:  runServe,
	}

	// --- Lead Store ---
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print lead statistics as JSON",
		RunE:  runStats,
	}
	purgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Delete leads older than --days",
		RunE:  runPurge,
	}

	// --- Utilities ---
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a download link for an existing lead",
		RunE:  runToken,
	}
	hashPasswordCmd = &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash suitable for ADMIN_PASSWORD",
		Args:  cobra.ExactArgs(1),
		RunE:  runHashPassword,
	}
)

func init() {
	purgeCmd.Flags().IntVar(&purgeDays, "days", config.LeadsRetentionDays, "remove leads created more than this many days ago")

	tokenCmd.Flags().StringVar(&tokenLeadID, "lead", "", "lead id the token grants access for")
	tokenCmd.Flags().StringVar(&tokenCampaign, "campaign", "", "campaign id (defaults to the lead's stored campaign)")
	_ = tokenCmd.MarkFlagRequired("lead")

	rootCmd.AddCommand(serveCmd, statsCmd, purgeCmd, tokenCmd, hashPasswordCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := startup.Initialize(); err != nil {
		return fmt.Errorf("application startup failed: %w", err)
	}
	return nil
}

// withStore opens the configured lead store for a one-shot command.
func withStore(fn func(repo leads.Repository, logger *logging.ChanneledLogger) error) error {
	logger, err := startup.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	repo, closer, err := startup.OpenLeadStore(startup.StoreOptionsFromConfig(), logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	return fn(repo, logger)
}

func runStats(cmd *cobra.Command, args []string) error {
	return withStore(func(repo leads.Repository, logger *logging.ChanneledLogger) error {
		stats, err := services.NewAdminService(repo, services.AdminCredentials{}, logger).Stats(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), stats)
	})
}

func runPurge(cmd *cobra.Command, args []string) error {
	return withStore(func(repo leads.Repository, logger *logging.ChanneledLogger) error {
		removed, err := services.NewAdminService(repo, services.AdminCredentials{}, logger).Cleanup(cmd.Context(), purgeDays)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d leads older than %d days\n", removed, purgeDays)
		return nil
	})
}

func runToken(cmd *cobra.Command, args []string) error {
	return withStore(func(repo leads.Repository, logger *logging.ChanneledLogger) error {
		lead, err := repo.FindByID(cmd.Context(), tokenLeadID)
		if err != nil {
			return err
		}
		if lead == nil {
			return fmt.Errorf("%w: %s", leads.ErrLeadNotFound, tokenLeadID)
		}

		campaignID := tokenCampaign
		if campaignID == "" {
			campaignID = lead.Campaign()
		}
		if campaignID == "" {
			return fmt.Errorf("lead %s has no stored campaign, pass --campaign", tokenLeadID)
		}

		token, err := security.NewDownloadTokenCodec(config.DownloadTokenTTL).Mint(lead.ID, security.SanitizeTokenField(campaignID))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"downloadToken": token,
			"downloadUrl":   config.BaseURL + services.DownloadPath + token,
			"expiresIn":     services.HumanizeTTL(config.DownloadTokenTTL),
		})
	})
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	hash, err := security.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

func printJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
