package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/parentdesk/portal-auth/internal/api/metrics"
	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

const defaultProfileTTL = time.Minute

// ProfileCache is a read-through cache in front of the profile repository.
// The rule engine fetches the requester profile on every document operation,
// so cached reads keep that hot path off Mongo. Writes go through to the
// inner repository and drop the cached key, bounding staleness to the TTL
// for writes made by other instances.
// Key format: profile:<identity_id>
type ProfileCache struct {
	client *redis.Client
	inner  ports.ProfileRepository
	ttl    time.Duration
	log    zerolog.Logger
}

// NewProfileCache wraps inner with a Redis cache. A ttl <= 0 falls back to
// the default.
func NewProfileCache(client *redis.Client, inner ports.ProfileRepository, ttl time.Duration, log zerolog.Logger) *ProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	return &ProfileCache{client: client, inner: inner, ttl: ttl, log: log}
}

type cachedProfile struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	Missing   bool   `json:"missing,omitempty"`
}

func (c *ProfileCache) GetProfile(ctx context.Context, identityID string) (*domain.UserProfile, error) {
	raw, err := c.client.Get(ctx, c.key(identityID)).Result()
	switch {
	case err == nil:
		var cp cachedProfile
		if jsonErr := json.Unmarshal([]byte(raw), &cp); jsonErr == nil {
			metrics.ProfileCacheTotal.WithLabelValues("hit").Inc()
			if cp.Missing {
				return nil, domain.ErrProfileNotFound
			}
			return cp.toDomain(), nil
		}
		// Corrupt entry: fall through to the store and overwrite it.
	case err != redis.Nil:
		c.log.Warn().Err(err).Str("identity_id", identityID).Msg("profile cache read failed, falling back to store")
	}
	metrics.ProfileCacheTotal.WithLabelValues("miss").Inc()

	profile, err := c.inner.GetProfile(ctx, identityID)
	if err != nil {
		if err == domain.ErrProfileNotFound {
			// Negative entry: repeated lookups for orphaned identities stay cheap.
			c.store(ctx, identityID, cachedProfile{Missing: true})
		}
		return nil, err
	}

	c.store(ctx, identityID, cachedProfile{
		Email:     profile.Email,
		Role:      string(profile.Role),
		CreatedAt: profile.CreatedAt.UTC().Format(time.RFC3339),
	})
	return profile, nil
}

func (c *ProfileCache) PutProfile(ctx context.Context, identityID string, profile *domain.UserProfile) error {
	if err := c.inner.PutProfile(ctx, identityID, profile); err != nil {
		return err
	}
	c.invalidate(ctx, identityID)
	return nil
}

func (c *ProfileCache) DeleteProfile(ctx context.Context, identityID string) error {
	if err := c.inner.DeleteProfile(ctx, identityID); err != nil {
		return err
	}
	c.invalidate(ctx, identityID)
	return nil
}

func (c *ProfileCache) store(ctx context.Context, identityID string, cp cachedProfile) {
	raw, err := json.Marshal(cp)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(identityID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("identity_id", identityID).Msg("profile cache write failed")
	}
}

func (c *ProfileCache) invalidate(ctx context.Context, identityID string) {
	if err := c.client.Del(ctx, c.key(identityID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("identity_id", identityID).Msg("profile cache invalidation failed")
	}
}

func (c *ProfileCache) key(identityID string) string {
	return fmt.Sprintf("profile:%s", identityID)
}

func (cp cachedProfile) toDomain() *domain.UserProfile {
	created, _ := time.Parse(time.RFC3339, cp.CreatedAt)
	return &domain.UserProfile{
		Email:     cp.Email,
		Role:      domain.ParseRole(cp.Role),
		CreatedAt: created.UTC(),
	}
}
