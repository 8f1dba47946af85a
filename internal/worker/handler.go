package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/suPer8Hu/session-to-uninfo/internal/idmap"
	"github.com/suPer8Hu/session-to-uninfo/internal/store/rabbitmq"
)

// ErrBadMessage marks a message body that can never be processed.
var ErrBadMessage = errors.New("bad message")

// Retryable reports whether a Handle error may succeed on a later attempt.
// Malformed messages, unknown sessions and missing tables will not.
func Retryable(err error) bool {
	var nf *idmap.NotFoundError
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrBadMessage), errors.As(err, &nf), errors.Is(err, idmap.ErrSchemaPrecondition):
		return false
	}
	return true
}

// Handler processes resolve jobs taken off the queue.
type Handler struct {
	db       *gorm.DB
	resolver *idmap.Resolver
}

func NewHandler(db *gorm.DB, resolver *idmap.Resolver) *Handler {
	return &Handler{db: db, resolver: resolver}
}

// Prepare runs the schema guard once before consuming.
func (h *Handler) Prepare(ctx context.Context) error {
	ok, err := idmap.EnsureSchema(ctx, h.db)
	if err != nil {
		return err
	}
	if !ok {
		return idmap.ErrSchemaPrecondition
	}
	return nil
}

// Handle decodes one message body and resolves its session ids.
// A returned error means the message must not be acked.
func (h *Handler) Handle(ctx context.Context, body []byte) (map[int64]int64, error) {
	var job rabbitmq.ResolveJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}

	log := zerolog.Ctx(ctx).With().Str("job_id", job.JobID).Logger()
	ctx = log.WithContext(ctx)

	start := time.Now()
	m, err := h.resolver.ResolveBatch(ctx, h.db, job.SessionIDs)
	if err != nil {
		log.Error().Err(err).Dur("cost", time.Since(start)).Int("sessions", len(job.SessionIDs)).Msg("resolve job failed")
		return nil, err
	}

	log.Info().Dur("cost", time.Since(start)).Int("sessions", len(m)).Msg("resolve job done")
	return m, nil
}
