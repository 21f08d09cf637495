package utils

import (
	"context"

	"github.com/mmdatafocus/restaurant_backend/config"
)

const clearBatchSize = 200

// ClearRedisPrefix deletes every key that starts with prefix and returns how
// many were removed. It is a no-op without redis.
func ClearRedisPrefix(ctx context.Context, prefix string) (int, error) {
	rdb := config.GetRedisDB()
	if rdb == nil {
		return 0, nil
	}

	removed := 0
	batch := make([]string, 0, clearBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := rdb.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	iter := rdb.Scan(ctx, 0, prefix+"*", clearBatchSize).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatchSize {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, flush()
}
