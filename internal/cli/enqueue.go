package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/suPer8Hu/session-to-uninfo/internal/app"
	"github.com/suPer8Hu/session-to-uninfo/internal/store/rabbitmq"
	"github.com/suPer8Hu/session-to-uninfo/internal/uninfo"
)

type jobPublisher interface {
	PublishResolveJob(ctx context.Context, sessionIDs []int64) (string, error)
}

func EnqueueCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Publish resolve jobs for every legacy session to RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := requireSchema(ctx, a); err != nil {
					return err
				}
				size := batchSize
				if size <= 0 {
					size = a.Cfg.EnqueueBatchSize
				}

				pub, err := rabbitmq.NewPublisher(a.Cfg.RabbitURL, a.Cfg.RabbitQueue)
				if err != nil {
					return fmt.Errorf("failed to connect to rabbitmq: %w", err)
				}
				defer pub.Close()

				jobs, sessions, err := enqueueAll(ctx, a.DB, pub, size)
				fmt.Fprintf(cmd.OutOrStdout(), "published %d jobs covering %d sessions\n", jobs, sessions)
				return err
			})
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Sessions per job (default ENQUEUE_BATCH_SIZE)")

	return cmd
}

// enqueueAll publishes one job per page of legacy session ids.
func enqueueAll(ctx context.Context, db *gorm.DB, pub jobPublisher, batchSize int) (jobs, sessions int, err error) {
	repo := uninfo.NewRepo(db)
	log := zerolog.Ctx(ctx)

	var after int64
	for {
		ids, err := repo.ListSessionIDs(ctx, after, batchSize)
		if err != nil {
			return jobs, sessions, err
		}
		if len(ids) == 0 {
			return jobs, sessions, nil
		}
		jobID, err := pub.PublishResolveJob(ctx, ids)
		if err != nil {
			return jobs, sessions, fmt.Errorf("publish batch after %d: %w", after, err)
		}
		log.Debug().Str("job_id", jobID).Int("sessions", len(ids)).Msg("published resolve job")

		jobs++
		sessions += len(ids)
		after = ids[len(ids)-1]
	}
}
