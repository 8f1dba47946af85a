package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session2uninfo:"

// Store caches resolved session → uninfo id pairs. Mappings never change once
// written, so entries only expire to bound memory. Keys are namespaced so
// that databases sharing one redis never see each other's ids.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	ns  string
}

// Namespace derives a stable key namespace from the database a store fronts.
func Namespace(driver, dsn string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(driver+"://"+dsn)).String()[:8]
}

func New(addr, password string, db int, ns string, ttl time.Duration) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), ns, ttl)
}

func NewWithClient(rdb *redis.Client, ns string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl, ns: ns}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) mappingKey(sessionID int64) string {
	return keyPrefix + s.ns + ":map:" + strconv.FormatInt(sessionID, 10)
}

// GetMappings returns the cached entries among sessionIDs; misses are absent.
func (s *Store) GetMappings(ctx context.Context, sessionIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(sessionIDs))
	for i, id := range sessionIDs {
		keys[i] = s.mappingKey(id)
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		uid, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			continue
		}
		out[sessionIDs[i]] = uid
	}
	return out, nil
}

func (s *Store) PutMappings(ctx context.Context, mappings map[int64]int64) error {
	if len(mappings) == 0 {
		return nil
	}
	pipe := s.rdb.Pipeline()
	for sid, uid := range mappings {
		pipe.Set(ctx, s.mappingKey(sid), strconv.FormatInt(uid, 10), s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}
