package leads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard suppresses repeated submissions of the same lead inside a window.
type Guard interface {
	// Claim returns false when the fingerprint is already held.
	Claim(ctx context.Context, lead Lead) (bool, error)
	// Release frees the fingerprint so the visitor may resubmit.
	Release(ctx context.Context, lead Lead) error
}

// Fingerprint identifies a submission by who sent it and what it said.
func Fingerprint(lead Lead) string {
	h := sha256.New()
	for _, part := range []string{
		strings.ToLower(strings.TrimSpace(lead.Email)),
		strings.ToLower(strings.TrimSpace(lead.Name)),
		strings.TrimSpace(lead.Message),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// MemoryGuard is a process-local Guard.
type MemoryGuard struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

// NewMemoryGuard creates an in-memory guard holding claims for window.
func NewMemoryGuard(window time.Duration) *MemoryGuard {
	return &MemoryGuard{
		window:  window,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

func (g *MemoryGuard) Claim(_ context.Context, lead Lead) (bool, error) {
	if g.window <= 0 {
		return true, nil
	}
	key := Fingerprint(lead)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, expires := range g.entries {
		if !now.Before(expires) {
			delete(g.entries, k)
		}
	}
	if _, held := g.entries[key]; held {
		return false, nil
	}
	g.entries[key] = now.Add(g.window)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, lead Lead) error {
	g.mu.Lock()
	delete(g.entries, Fingerprint(lead))
	g.mu.Unlock()
	return nil
}

// RedisGuard shares claims across relay instances.
type RedisGuard struct {
	redis  *redis.Client
	window time.Duration
	prefix string
}

// NewRedisGuard creates a guard backed by SET NX with a TTL.
func NewRedisGuard(client *redis.Client, window time.Duration) *RedisGuard {
	return &RedisGuard{redis: client, window: window, prefix: "leadrelay:submission:"}
}

func (g *RedisGuard) key(lead Lead) string {
	return g.prefix + Fingerprint(lead)
}

func (g *RedisGuard) Claim(ctx context.Context, lead Lead) (bool, error) {
	if g.window <= 0 {
		return true, nil
	}
	ok, err := g.redis.SetNX(ctx, g.key(lead), time.Now().UTC().Format(time.RFC3339), g.window).Result()
	if err != nil {
		return false, fmt.Errorf("leads: claim submission: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, lead Lead) error {
	if err := g.redis.Del(ctx, g.key(lead)).Err(); err != nil {
		return fmt.Errorf("leads: release submission: %w", err)
	}
	return nil
}

var (
	_ Guard = (*MemoryGuard)(nil)
	_ Guard = (*RedisGuard)(nil)
)
