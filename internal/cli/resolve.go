package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/suPer8Hu/session-to-uninfo/internal/app"
	"github.com/suPer8Hu/session-to-uninfo/internal/idmap"
	"github.com/suPer8Hu/session-to-uninfo/internal/uninfo"
)

func ResolveCmd() *cobra.Command {
	var (
		all       bool
		dryRun    bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "resolve [session-id...]",
		Short: "Resolve legacy session ids to uninfo ids",
		Long: `Resolve the given legacy session ids, or every legacy session with --all.

Sessions already present in the id map are not translated again.

Examples:
  migrate resolve 1 2 3
  migrate resolve --all --batch-size 200
  migrate resolve 42 --dry-run     # print the uninfo key without writing
  migrate resolve --all --dry-run  # preview every legacy session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if !all && len(ids) == 0 {
				return errors.New("give session ids or --all")
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				if dryRun && all {
					return previewAll(ctx, out, a.DB, batchSize)
				}
				if dryRun {
					return previewSessions(ctx, out, a.DB, ids)
				}
				if err := requireSchema(ctx, a); err != nil {
					return err
				}
				if all {
					n, err := resolveAll(ctx, a.DB, a.Resolver, batchSize)
					fmt.Fprintf(out, "resolved %d sessions\n", n)
					return err
				}
				m, err := a.Resolver.ResolveBatch(ctx, a.DB, ids)
				if err != nil {
					return err
				}
				printMappings(out, m)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Resolve every legacy session")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print translated keys without making changes")
	cmd.Flags().IntVar(&batchSize, "batch-size", 500, "Sessions per batch with --all")

	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid session id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resolveAll walks the legacy table in id order and returns the number of
// sessions resolved before any error.
func resolveAll(ctx context.Context, db *gorm.DB, r *idmap.Resolver, batchSize int) (int, error) {
	sessions := uninfo.NewRepo(db)
	var (
		after int64
		total int
	)
	for {
		ids, err := sessions.ListSessionIDs(ctx, after, batchSize)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		m, err := r.ResolveBatch(ctx, db, ids)
		if err != nil {
			return total, err
		}
		total += len(m)
		after = ids[len(ids)-1]
	}
}

// previewAll prints the translated key of every legacy session without writing.
func previewAll(ctx context.Context, w io.Writer, db *gorm.DB, batchSize int) error {
	sessions := uninfo.NewRepo(db)
	var after int64
	for {
		ids, err := sessions.ListSessionIDs(ctx, after, batchSize)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := previewSessions(ctx, w, db, ids); err != nil {
			return err
		}
		after = ids[len(ids)-1]
	}
}

func previewSessions(ctx context.Context, w io.Writer, db *gorm.DB, ids []int64) error {
	sessions := uninfo.NewRepo(db)
	for _, id := range ids {
		s, err := sessions.GetSession(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &idmap.NotFoundError{SessionID: id}
			}
			return err
		}
		k := uninfo.Translate(*s)
		fmt.Fprintf(w, "%d: self_id=%s adapter=%s scope=%s scene=%s:%s parent=%s:%s user_id=%s\n",
			id, k.SelfID, k.Adapter, k.Scope,
			k.Scene.Type, k.Scene.ID, k.Scene.ParentType, k.Scene.ParentID,
			k.UserID)
	}
	return nil
}

func printMappings(w io.Writer, m map[int64]int64) {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%d -> %d\n", k, m[k])
	}
}
