// Package redisqueue carries encoded jobs on a Redis list. Producers LPUSH,
// workers BRPOP; a job in flight exists only in the worker's memory, so the
// deliveries table is what guarantees at-most-once effects.
package redisqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelasq/authgate/internal/jobs"
)

type Queue struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *Queue {
	return &Queue{
		client: client,
		key:    key,
	}
}

func (q *Queue) Enqueue(ctx context.Context, j jobs.Job) error {
	b, err := json.Marshal(j)

	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	err = q.client.LPush(ctx, q.key, b).Err()

	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}

	return nil
}

// Dequeue blocks up to timeout for the next job. The second return value is
// false when the wait timed out with an empty queue.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (jobs.Job, bool, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()

	if err != nil {
		if err == redis.Nil {
			return jobs.Job{}, false, nil
		}

		return jobs.Job{}, false, err
	}

	// BRPop returns [key, value]
	if len(res) != 2 {
		return jobs.Job{}, false, fmt.Errorf("unexpected brpop reply length %d", len(res))
	}

	var j jobs.Job

	if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
		return jobs.Job{}, false, fmt.Errorf("decode job: %w", err)
	}

	return j, true, nil
}

// Len reports the number of waiting jobs, used by readiness checks.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
