// Package locker provides a short-lived distributed mutex on Redis.
//
// A lock is a key written with SET NX PX holding a random token. Release
// deletes the key only while it still holds that token, so a holder whose
// lease expired cannot free a lock someone else now owns.
package locker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotAcquired is returned when the key is already held.
	ErrNotAcquired = errors.New("locker: lock not acquired")
	// ErrNotHeld is returned by Release when the lease was lost.
	ErrNotHeld = errors.New("locker: lock not held")
)

const defaultTTL = time.Minute

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker acquires named leases.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is a held lock.
type Lease interface {
	Release(ctx context.Context) error
}

// Redis implements Locker on a go-redis client.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis locker whose keys live under "lock:".
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client, prefix: "lock:"}
}

// Acquire takes key for ttl or returns ErrNotAcquired.
func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	fk := r.prefix + key
	ok, err := r.client.SetNX(ctx, fk, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return &redisLease{client: r.client, key: fk, token: token}, nil
}

type redisLease struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// Noop grants every lock. It serves single-instance deployments without Redis.
type Noop struct{}

// Acquire always succeeds.
func (Noop) Acquire(context.Context, string, time.Duration) (Lease, error) {
	return noopLease{}, nil
}

type noopLease struct{}

func (noopLease) Release(context.Context) error { return nil }
