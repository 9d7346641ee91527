package worker

// dlq.go: dead letter queue
// Jobs that fail permanently or run out of attempts land in dlq:{queue}. The
// admin routes list them and push them back for another round.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ pushes a failed job to the dead letter queue of its source queue.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to push")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries waiting in a DLQ.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// ListarDLQ returns up to limit entries, newest first. Malformed entries are skipped.
func ListarDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]DLQEntry, error) {
	raws, err := rdb.LRange(ctx, DLQPrefix+queue, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raws))
	for _, raw := range raws {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ReencolarDLQ moves every entry of the DLQ back to its queue with a fresh
// attempt count and returns how many were moved.
func ReencolarDLQ(ctx context.Context, rdb *redis.Client, queue string) (int, error) {
	n := 0
	for {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if err == redis.Nil {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil || e.JobType == "" {
			log.Warn().Str("queue", queue).Msg("dlq: descartando entrada ilegible")
			continue
		}
		if err := push(ctx, rdb, queue, Job{Type: e.JobType, Payload: e.Payload}); err != nil {
			// put it back so nothing is lost
			_ = rdb.RPush(ctx, DLQPrefix+queue, raw).Err()
			return n, err
		}
		n++
	}
}
