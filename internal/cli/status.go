package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/suPer8Hu/session-to-uninfo/internal/app"
	"github.com/suPer8Hu/session-to-uninfo/internal/idmap"
)

func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how many legacy sessions are mapped",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := requireSchema(ctx, a); err != nil {
					return err
				}
				st, err := idmap.Status(ctx, a.DB)
				if err != nil {
					return fmt.Errorf("failed to read status: %w", err)
				}
				printStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}
}

func printStatus(w io.Writer, st idmap.Stats) {
	fmt.Fprintf(w, "%-16s %d\n", "legacy sessions", st.LegacySessions)
	fmt.Fprintf(w, "%-16s %d\n", "mapped", st.Mapped)

	pending := color.New(color.FgGreen)
	if st.Pending > 0 {
		pending = color.New(color.FgYellow)
	}
	pending.Fprintf(w, "%-16s %d\n", "pending", st.Pending)
}
