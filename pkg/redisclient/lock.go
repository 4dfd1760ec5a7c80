package redisclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockHeld means another holder owns the key.
	ErrLockHeld = errors.New("redisclient: lock held")
	// ErrLockLost means the key expired or now belongs to someone else.
	ErrLockLost = errors.New("redisclient: lock lost")
)

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript resets the ttl only if the key still carries our token.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Lock is a held key. Release is idempotent and never deletes someone else's lock.
type Lock struct {
	client *Client
	key    string
	token  string
	ttl    time.Duration

	mu       sync.Mutex
	released bool
}

// TryLock sets key with a random token and ttl if it is absent.
func (c *Client) TryLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()
	ok, err := c.native.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: c, key: key, token: token, ttl: ttl}, nil
}

// Refresh extends the lock by its original ttl.
func (l *Lock) Refresh(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return ErrLockLost
	}
	n, err := refreshScript.Run(ctx, l.client.native, []string{l.key}, l.token, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}

func (l *Lock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return nil
	}
	l.released = true
	return releaseScript.Run(ctx, l.client.native, []string{l.key}, l.token).Err()
}
