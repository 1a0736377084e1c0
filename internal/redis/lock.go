package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"cricket-booking/internal/slot"
)

var ErrLockTimeout = errors.New("timed out waiting for slot lock")

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

type SlotLock struct {
	Client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

func NewSlotLock(client *redis.Client, ttl, wait time.Duration) *SlotLock {
	return &SlotLock{Client: client, ttl: ttl, wait: wait, retry: 50 * time.Millisecond}
}

func lockKey(groundID int64, date slot.Date) string {
	return fmt.Sprintf("slot_lock:%d:%s", groundID, date)
}

// Acquire blocks until the ground/date key is ours or the wait budget runs out.
// The returned release func is safe to call after the TTL has expired.
func (l *SlotLock) Acquire(ctx context.Context, groundID int64, date slot.Date) (func(), error) {
	key := lockKey(groundID, date)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("failed to take slot lock: %w", err)
		}
		if ok {
			return func() { _ = l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(l.retry):
		}
	}
}

func (l *SlotLock) release(key, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (l *SlotLock) Ping(ctx context.Context) error {
	return l.Client.Ping(ctx).Err()
}

func (l *SlotLock) Close() error {
	return l.Client.Close()
}
