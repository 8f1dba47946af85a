package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/suPer8Hu/session-to-uninfo/internal/app"
	"github.com/suPer8Hu/session-to-uninfo/internal/config"
	"github.com/suPer8Hu/session-to-uninfo/internal/store/rabbitmq"
	"github.com/suPer8Hu/session-to-uninfo/internal/worker"
)

func workerConcurrency(n int) int {
	if n <= 0 {
		return 1
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open app: %w", err)
	}
	defer a.Close()
	ctx = a.Context(ctx)
	logger := a.Log

	h := worker.NewHandler(a.DB, a.Resolver)
	if err := h.Prepare(ctx); err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		return fmt.Errorf("rabbit dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbit channel: %w", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareQueues(ch, cfg.RabbitQueue); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	// More than one worker relies on the unique constraints of the
	// id map and uninfo tables to reject concurrent duplicates.
	concurrency := workerConcurrency(cfg.WorkerConcurrency)

	if err := ch.Qos(concurrency, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	logger.Info().Str("queue", cfg.RabbitQueue).Int("concurrency", concurrency).Msg("worker started")

	var pubMu sync.Mutex
	retry := func(d amqp.Delivery) error {
		pubMu.Lock()
		defer pubMu.Unlock()
		// not ctx: a job interrupted by shutdown still goes to the retry queue
		return rabbitmq.Retry(context.Background(), ch, cfg.RabbitQueue, d)
	}

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			wlog := logger.With().Int("worker", workerID).Logger()
			wctx := wlog.WithContext(ctx)
			for d := range jobs {
				_, err := h.Handle(wctx, d.Body)
				if err == nil {
					if err := d.Ack(false); err != nil {
						wlog.Error().Err(err).Str("message_id", d.MessageId).Msg("ack failed")
					}
					continue
				}

				attempt := rabbitmq.Attempt(d.Headers)
				if worker.Retryable(err) && attempt < rabbitmq.MaxAttempts {
					perr := retry(d)
					if perr == nil {
						wlog.Warn().Str("message_id", d.MessageId).Int("attempt", attempt+1).Msg("job scheduled for retry")
						_ = d.Ack(false)
						continue
					}
					wlog.Error().Err(perr).Str("message_id", d.MessageId).Msg("retry publish failed")
				}
				// no requeue: the main queue dead-letters to the DLQ
				_ = d.Nack(false, false)
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker shutting down")
			close(jobs)
			wg.Wait()
			return nil

		case d, ok := <-msgs:
			if !ok {
				close(jobs)
				wg.Wait()
				return errors.New("delivery channel closed")
			}
			jobs <- d
		}
	}
}
