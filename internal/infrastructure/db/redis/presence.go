package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presencePrefix = "presence:"
	presenceTTL    = 90 * time.Second
)

// PresenceStore tracks which users currently hold a live realtime
// connection. One key per online user, expiring unless refreshed, so a
// crashed server never leaves users permanently "online".
type PresenceStore struct {
	client *redis.Client
}

// NewPresenceStore creates a PresenceStore wrapping the given Redis client.
func NewPresenceStore(client *redis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

// MarkOnline records the user as online until the TTL lapses.
func (p *PresenceStore) MarkOnline(ctx context.Context, username string) error {
	if err := p.client.Set(ctx, p.key(username), "1", presenceTTL).Err(); err != nil {
		return fmt.Errorf("presence mark online: %w", err)
	}
	return nil
}

// Refresh extends the user's presence TTL.
func (p *PresenceStore) Refresh(ctx context.Context, username string) error {
	return p.client.Expire(ctx, p.key(username), presenceTTL).Err()
}

// MarkOffline removes the user's presence entry.
func (p *PresenceStore) MarkOffline(ctx context.Context, username string) error {
	if err := p.client.Del(ctx, p.key(username)).Err(); err != nil {
		return fmt.Errorf("presence mark offline: %w", err)
	}
	return nil
}

// OnlineUsers lists every username with a live presence entry.
func (p *PresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	users := []string{}
	iter := p.client.Scan(ctx, 0, presencePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		users = append(users, strings.TrimPrefix(iter.Val(), presencePrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("presence scan: %w", err)
	}
	return users, nil
}

func (p *PresenceStore) key(username string) string {
	return presencePrefix + username
}
