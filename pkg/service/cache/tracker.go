package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
)

const keyPrefix = "moirai:tracker:"

// Tracker is a read-through cache in front of a WorkTracker. Cache
// failures are logged and the query goes to the tracker; tracker failures
// are returned as is.
type Tracker struct {
	next interfaces.WorkTracker
	rdb  *goredis.Client
	ttl  time.Duration
}

var (
	_ interfaces.WorkTracker  = &Tracker{}
	_ interfaces.TrackerCache = &Tracker{}
)

func NewTracker(next interfaces.WorkTracker, rdb *goredis.Client, ttl time.Duration) *Tracker {
	return &Tracker{next: next, rdb: rdb, ttl: ttl}
}

func (t *Tracker) Search(ctx context.Context, query string) ([]*model.RawWorkItem, error) {
	logger := logging.From(ctx)
	key := Key(query)

	cached, err := t.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []*model.RawWorkItem
		if err := json.Unmarshal(cached, &items); err == nil {
			logger.Debug("tracker cache hit", "key", key, "count", len(items))
			return items, nil
		}
		logger.Warn("discarding undecodable tracker cache entry", "key", key)
	case errors.Is(err, goredis.Nil):
	default:
		logger.Warn("tracker cache unavailable", "error", err)
	}

	items, err := t.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode tracker result")
	}
	if err := t.rdb.Set(ctx, key, data, t.ttl).Err(); err != nil {
		logger.Warn("failed to store tracker result in cache", "error", err)
	}
	return items, nil
}

// Invalidate drops the cached result of query
func (t *Tracker) Invalidate(ctx context.Context, query string) error {
	if err := t.rdb.Del(ctx, Key(query)).Err(); err != nil {
		return goerr.Wrap(err, "failed to invalidate tracker cache")
	}
	return nil
}

// Key derives the cache key of a query
func Key(query string) string {
	sum := sha256.Sum256([]byte(query))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Connect opens a client and checks the connection with PING
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr))
	}
	return rdb, nil
}
