package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/suPer8Hu/session-to-uninfo/internal/app"
	"github.com/suPer8Hu/session-to-uninfo/internal/config"
	"github.com/suPer8Hu/session-to-uninfo/internal/idmap"
)

// RootCmd returns the migrate command tree.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Map legacy session rows to unified identity rows",
		Long: `migrate links every row of the legacy session table to a row of the
unified identity (uninfo) table, creating the uninfo row when needed, and
records the link in nonebot_session_to_uninfo_id_map.

All commands are safe to run multiple times.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(CheckCmd())
	rootCmd.AddCommand(ResolveCmd())
	rootCmd.AddCommand(EnqueueCmd())
	rootCmd.AddCommand(StatusCmd())

	return rootCmd
}

// withApp opens the configured app and runs fn with a logging context.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a.Context(ctx), a)
}

// requireSchema runs the schema guard and turns a skip signal into an error.
func requireSchema(ctx context.Context, a *app.App) error {
	ok, err := idmap.EnsureSchema(ctx, a.DB)
	if err != nil {
		return err
	}
	if !ok {
		return idmap.ErrSchemaPrecondition
	}
	return nil
}
