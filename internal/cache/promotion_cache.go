package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/openretail/promotion-service/internal/models"
)

const activeKey = "active-promotions"

// PromotionCache holds the assembled active-promotion aggregate between
// evaluations. Write paths invalidate it; the TTL bounds staleness if an
// invalidation is ever missed.
type PromotionCache struct {
	c *gocache.Cache
}

func NewPromotionCache(ttl time.Duration) *PromotionCache {
	return &PromotionCache{
		c: gocache.New(ttl, 2*ttl),
	}
}

func (p *PromotionCache) Get() ([]*models.PromotionMeta, bool) {
	v, ok := p.c.Get(activeKey)
	if !ok {
		return nil, false
	}
	metas, ok := v.([]*models.PromotionMeta)
	return metas, ok
}

func (p *PromotionCache) Set(metas []*models.PromotionMeta) {
	p.c.Set(activeKey, metas, gocache.DefaultExpiration)
}

func (p *PromotionCache) Invalidate() {
	p.c.Delete(activeKey)
}
