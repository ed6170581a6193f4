// Package redis connects to the Redis server backing the active session
// store when ACTIVE_SESSION_DRIVER=redis.
//
// It wraps github.com/redis/go-redis/v9 with:
//
//   - Connect, which parses REDIS_URL and retries the initial ping.
//   - Healthcheck, a readiness probe for httpserver.HealthCheckHandler.
//
// # Usage
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := activesession.NewRedisStore(client)
//
// # Errors
//
// All errors are sentinel values in the "redis.*" namespace and are joined
// with the underlying go-redis error, so errors.Is works on both.
package redis
