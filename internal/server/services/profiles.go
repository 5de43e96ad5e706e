package services

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/cache"
)

// invalidateProfiles drops cached profiles after their documents changed in
// the store. Failures are logged; the entries then expire by TTL.
func invalidateProfiles(ctx context.Context, c cache.ProfileCache, log logging.Logger, ids ...string) {
	if len(ids) == 0 {
		return
	}
	if err := c.Invalidate(ctx, ids...); err != nil {
		log.Warn(ctx, "profile cache invalidation failed", "user_ids", ids, "error", err)
	}
}
