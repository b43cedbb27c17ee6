package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// acquireScript takes every key for ARGV[1] or none of them. Keys already
// owned by the same token are refreshed.
var acquireScript = redis.NewScript(`
for _, key in ipairs(KEYS) do
	local owner = redis.call("GET", key)
	if owner and owner ~= ARGV[1] then
		return 0
	end
end
for _, key in ipairs(KEYS) do
	redis.call("SET", key, ARGV[1], "PX", ARGV[2])
end
return 1
`)

// releaseScript deletes only the keys still owned by ARGV[1].
var releaseScript = redis.NewScript(`
local released = 0
for _, key in ipairs(KEYS) do
	if redis.call("GET", key) == ARGV[1] then
		redis.call("DEL", key)
		released = released + 1
	end
end
return released
`)

// SettlementLocker implements usecase.SettlementLocker with one key per entry,
// so settlements on different replicas never overlap.
type SettlementLocker struct {
	client *redis.Client
	prefix string
}

// NewSettlementLocker creates a new SettlementLocker.
func NewSettlementLocker(client *redis.Client) *SettlementLocker {
	return &SettlementLocker{
		client: client,
		prefix: "settlement:lock:",
	}
}

// Acquire locks every id for token, or none when any is held by another token.
func (l *SettlementLocker) Acquire(ctx context.Context, token string, ids []string, ttl time.Duration) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}

	ms := ttl.Milliseconds()
	if ms <= 0 {
		ms = 1
	}

	n, err := acquireScript.Run(ctx, l.client, l.keys(ids), token, ms).Int()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

// Release drops the locks on ids that token still owns.
func (l *SettlementLocker) Release(ctx context.Context, token string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return releaseScript.Run(ctx, l.client, l.keys(ids), token).Err()
}

func (l *SettlementLocker) keys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = l.prefix + id
	}
	return keys
}
