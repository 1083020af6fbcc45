package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumedTTL keeps the marker alive comfortably past the 1-hour token
// window, after which the token is expired anyway.
const consumedTTL = 2 * time.Hour

// ResetTokenGuard records consumed password-reset tokens so that two
// requests racing on the same still-valid token cannot both succeed.
// Key format: pwreset:consumed:<token>
type ResetTokenGuard struct {
	client *redis.Client
}

// NewResetTokenGuard creates a ResetTokenGuard wrapping the given Redis client.
func NewResetTokenGuard(client *redis.Client) *ResetTokenGuard {
	return &ResetTokenGuard{client: client}
}

// Consume atomically marks the token consumed. It returns true for the
// first caller and false for every subsequent one.
func (g *ResetTokenGuard) Consume(ctx context.Context, token string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(token), "1", consumedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("consume reset token: %w", err)
	}
	return ok, nil
}

func (g *ResetTokenGuard) key(token string) string {
	return "pwreset:consumed:" + token
}
