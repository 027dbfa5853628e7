// Package redis opens the go-redis client used by the Redis scheduler in
// pkg/job.
//
//	cfg := redis.Config{URL: "redis://localhost:6379/0"}
//	client, err := redis.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	scheduler, err := job.NewRedis(client)
//
// Config carries env tags (REDIS_URL, REDIS_POOL_SIZE, ...) for
// github.com/caarlos0/env.
package redis
