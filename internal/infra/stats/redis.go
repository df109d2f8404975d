package stats

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the counters in a single hash so that prefork children and
// replicas report one shared view.
type Redis struct {
	rdb *redis.Client
	key string
}

// NewRedis returns a Recorder backed by the hash at key.
func NewRedis(rdb *redis.Client, key string) *Redis {
	return &Redis{rdb: rdb, key: key}
}

func (r *Redis) Incr(ctx context.Context, ev Event) error {
	return r.rdb.HIncrBy(ctx, r.key, string(ev), 1).Err()
}

func (r *Redis) Snapshot(ctx context.Context) (map[Event]int64, error) {
	raw, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[Event]int64, len(Events))
	for _, ev := range Events {
		out[ev] = 0
		if v, ok := raw[string(ev)]; ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, err
			}
			out[ev] = n
		}
	}
	return out, nil
}
