package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/suPer8Hu/session-to-uninfo/internal/app"
	"github.com/suPer8Hu/session-to-uninfo/internal/idmap"
)

func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the source tables and create the id map table if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				ok, err := idmap.EnsureSchema(ctx, a.DB)
				if err != nil {
					return fmt.Errorf("failed to check schema: %w", err)
				}
				out := cmd.OutOrStdout()
				if !ok {
					color.New(color.FgYellow).Fprintln(out, "⚠ required tables missing, migration skipped")
					return idmap.ErrSchemaPrecondition
				}
				color.New(color.FgGreen).Fprintln(out, "✓ schema ready")
				return nil
			})
		},
	}
}
