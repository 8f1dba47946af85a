package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// ResolveJob asks a worker to resolve a batch of legacy session ids.
type ResolveJob struct {
	JobID      string  `json:"job_id"`
	SessionIDs []int64 `json:"session_ids"`
}

func NewResolveJob(sessionIDs []int64) ResolveJob {
	return ResolveJob{JobID: ulid.Make().String(), SessionIDs: sessionIDs}
}

func (j ResolveJob) Validate() error {
	if j.JobID == "" {
		return errors.New("missing job_id")
	}
	if len(j.SessionIDs) == 0 {
		return errors.New("empty session_ids")
	}
	return nil
}

const (
	// MaxAttempts bounds how often a job goes through the retry queue
	// before it is left in the DLQ.
	MaxAttempts = 5

	attemptHeader  = "x-attempt"
	baseRetryDelay = 2 * time.Second
	maxRetryDelay  = time.Minute
)

func RetryQueue(queue string) string { return queue + ".retry" }
func DeadLetterQueue(queue string) string { return queue + ".dlq" }

// Attempt returns how many times a delivery has been through the retry queue.
func Attempt(headers amqp.Table) int {
	switch v := headers[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// RetryDelay doubles per attempt, capped at one minute.
func RetryDelay(attempt int) time.Duration {
	d := baseRetryDelay
	for i := 1; i < attempt && d < maxRetryDelay; i++ {
		d *= 2
	}
	return min(d, maxRetryDelay)
}

// RetryPublishing copies d for the retry queue. It expires there after the
// attempt's delay and is dead-lettered back to the main queue.
func RetryPublishing(d amqp.Delivery, attempt int) amqp.Publishing {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[attemptHeader] = int32(attempt)

	return amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    d.MessageId,
		Headers:      headers,
		Expiration:   strconv.FormatInt(RetryDelay(attempt).Milliseconds(), 10),
		Body:         d.Body,
		Timestamp:    time.Now(),
	}
}

// Retry sends d to the retry queue of queue as its next attempt.
func Retry(ctx context.Context, ch *amqp.Channel, queue string, d amqp.Delivery) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(cctx, "", RetryQueue(queue), false, false,
		RetryPublishing(d, Attempt(d.Headers)+1))
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareQueues(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// DeclareQueues declares the main queue with its retry queue and DLQ.
// Publisher and worker must declare the same arguments.
func DeclareQueues(ch *amqp.Channel, queue string) error {
	mainQ := queue
	retryQ := RetryQueue(queue)
	dlqQ := DeadLetterQueue(queue)

	// DLQ
	if _, err := ch.QueueDeclare(
		dlqQ,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	// Retry queue: message TTL -> dead-letter back to main queue
	if _, err := ch.QueueDeclare(
		retryQ,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": mainQ,
		},
	); err != nil {
		return err
	}

	// Main queue: dead-letter to DLQ on reject/nack(requeue=false)
	_, err := ch.QueueDeclare(
		mainQ,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlqQ,
		},
	)
	return err
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishResolveJob enqueues sessionIDs and returns the job id.
func (p *Publisher) PublishResolveJob(ctx context.Context, sessionIDs []int64) (string, error) {
	job := NewResolveJob(sessionIDs)
	body, err := json.Marshal(job)
	if err != nil {
		return "", err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.JobID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return "", err
	}
	return job.JobID, nil
}
