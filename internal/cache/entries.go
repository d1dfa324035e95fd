// Package cache keeps a copy of the ranked entry list in Redis so GET /entries
// can skip the database between writes.
//
// Lists are stored under a key that carries the current generation. Writers
// bump the generation, so a list read from the database before a write can
// only land under a generation nobody reads anymore.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tortillometro/internal/domain/entries"

	"github.com/redis/go-redis/v9"
)

const (
	listKey = "entries:list"
	genKey  = "entries:gen"
)

// NewRedisClient connects to addr and pings it with a short timeout.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

type EntryCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewEntryCache(rdb *redis.Client, prefix string, ttl time.Duration) *EntryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &EntryCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *EntryCache) withPrefix(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

func (c *EntryCache) genKey() string {
	return c.withPrefix(genKey)
}

func (c *EntryCache) listKey(gen int64) string {
	return c.withPrefix(listKey) + ":" + strconv.FormatInt(gen, 10)
}

// Generation returns the current list generation; 0 before the first write.
func (c *EntryCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache generation: %w", err)
	}
	return gen, nil
}

// List returns the list cached for the current generation. ok is false on a
// miss; gen is still valid then and must be handed back to StoreList.
func (c *EntryCache) List(ctx context.Context) (list []entries.Entry, gen int64, ok bool, err error) {
	gen, err = c.Generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := c.rdb.Get(ctx, c.listKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, 0, false, fmt.Errorf("decode cached entries: %w", err)
	}
	return list, gen, true, nil
}

// StoreList caches list under gen, the generation observed before list was
// read from the database.
func (c *EntryCache) StoreList(ctx context.Context, gen int64, list []entries.Entry) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.listKey(gen), raw, c.ttl).Err()
}

// Invalidate moves to a new generation; called after every write.
func (c *EntryCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.genKey()).Err()
}
