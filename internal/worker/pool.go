package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueBalance = "jobs:balance"

	JobBalanceTurno = "balance_turno"

	// maxIntentos is how many times a job runs before going to the DLQ
	maxIntentos = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// BalanceJobPayload identifies the shift whose balance snapshot is rebuilt.
type BalanceJobPayload struct {
	TurnoID string `json:"turno_id"`
}

// EnqueueBalanceTurno pushes a balance snapshot job for one shift.
func (d *Dispatcher) EnqueueBalanceTurno(ctx context.Context, turnoID uuid.UUID) error {
	return d.enqueue(ctx, QueueBalance, JobBalanceTurno, BalanceJobPayload{TurnoID: turnoID.String()})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// JobHandler runs one job payload. A returned error triggers a retry.
type JobHandler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// WorkerHandlers maps job types to their handlers. Wired in cmd/server.
type WorkerHandlers struct {
	Balance JobHandler
}

func (h *WorkerHandlers) handler(jobType string) JobHandler {
	switch jobType {
	case JobBalanceTurno:
		return h.Balance
	default:
		return nil
	}
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP and is idle until a job arrives.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueBalance}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "", json.RawMessage(raw), "envelope invalido: "+err.Error(), 0)
		return
	}

	h := handlers.handler(job.Type)
	if h == nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "tipo de job desconocido", job.Attempts)
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed")

	if job.Attempts >= maxIntentos || !reintentable(err) {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	if err := push(ctx, rdb, queue, job); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("failed to requeue job")
	}
}
