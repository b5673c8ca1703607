package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peopledesk/internal/company"
	"peopledesk/internal/model"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/config"
	"peopledesk/pkg/database"
	"peopledesk/pkg/logger"
)

// peopledeskctl is the operator CLI: tenant provisioning and user count
// reconciliation outside the request path.
func main() {
	rootCmd := &cobra.Command{
		Use:   "peopledeskctl",
		Short: "PeopleDesk operations tool",
	}

	rootCmd.AddCommand(
		syncUserCountsCmd(),
		initTenantCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and wires the shared service graph.
func setup() (*config.Config, *tenant.Resolver, *company.CountService, error) {
	cfg, err := config.Load("peopledeskctl")
	if err != nil {
		return nil, nil, nil, err
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		return nil, nil, nil, err
	}

	central, err := database.InitDB(&cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.MigrateModels(&model.Company{}); err != nil {
		return nil, nil, nil, err
	}

	tenants := tenant.NewResolver(tenant.Options{
		Open:       database.TenantOpener(cfg),
		MaxEntries: cfg.Tenant.MaxCachedHandles,
		Logger:     logger.GetLogger(),
	})

	return cfg, tenants, company.NewCountService(central, tenants, logger.GetLogger()), nil
}

func syncUserCountsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "sync-user-counts [company-id]",
		Short: "Reconcile cached company user counts against tenant databases",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("provide a company id or --all")
			}

			_, tenants, counts, err := setup()
			if err != nil {
				return err
			}
			defer tenants.Close()

			ctx := context.Background()
			log := logger.GetLogger()

			if all {
				report, err := counts.SyncAll(ctx)
				if err != nil {
					return err
				}
				log.Info("User count reconciliation finished",
					zap.Int("synced", report.Synced),
					zap.Int("failed", report.Failed))
				fmt.Printf("synced %d companies, %d failed\n", report.Synced, report.Failed)
				return nil
			}

			count, err := counts.Sync(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("company %s user_count = %d\n", args[0], count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "reconcile every company")
	return cmd
}

func initTenantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-tenant <company-id>",
		Short: "Materialize a tenant database and seed default reference data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tenants, _, err := setup()
			if err != nil {
				return err
			}
			defer tenants.Close()

			ctx := context.Background()
			cols, err := tenants.Collections(ctx, args[0])
			if err != nil {
				return err
			}
			if err := tenant.Bootstrap(ctx, cols); err != nil {
				return err
			}

			fmt.Printf("tenant %s initialized\n", args[0])
			return nil
		},
	}
}
