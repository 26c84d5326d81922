package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/service/cache"
	"github.com/urfave/cli/v3"
)

// Cache holds the Redis settings of the tracker cache
type Cache struct {
	addr     string
	password string
	db       int
	ttl      time.Duration
}

func (x *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address for caching tracker searches. Empty disables the cache",
			Category:    "Cache",
			Sources:     cli.EnvVars("MOIRAI_REDIS_ADDR"),
			Destination: &x.addr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Cache",
			Sources:     cli.EnvVars("MOIRAI_REDIS_PASSWORD"),
			Destination: &x.password,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Cache",
			Sources:     cli.EnvVars("MOIRAI_REDIS_DB"),
			Destination: &x.db,
		},
		&cli.DurationFlag{
			Name:        "tracker-cache-ttl",
			Usage:       "Lifetime of cached tracker searches",
			Category:    "Cache",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("MOIRAI_TRACKER_CACHE_TTL"),
			Destination: &x.ttl,
		},
	}
}

func (x Cache) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", x.addr),
		slog.Int("password.len", len(x.password)),
		slog.Int("db", x.db),
		slog.Duration("ttl", x.ttl),
	)
}

// Wrap puts the cache in front of tracker. Without an address the tracker
// is returned as is. The returned function closes the Redis client.
func (x *Cache) Wrap(ctx context.Context, tracker interfaces.WorkTracker) (interfaces.WorkTracker, func(), error) {
	if x.addr == "" || tracker == nil {
		return tracker, func() {}, nil
	}

	rdb, err := cache.Connect(ctx, x.addr, x.password, x.db)
	if err != nil {
		return nil, func() {}, goerr.Wrap(err, "failed to configure tracker cache")
	}
	return cache.NewTracker(tracker, rdb, x.ttl), func() { _ = rdb.Close() }, nil
}
