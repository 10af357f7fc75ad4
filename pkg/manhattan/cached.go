package manhattan

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orthoroute/pkg/cache"
	"github.com/matzehuels/orthoroute/pkg/geom"
	"github.com/matzehuels/orthoroute/pkg/observability"
)

// CachedLayouter wraps a Layouter with a result cache, so the CLI and the API
// share one caching path.
//
// Routing is deterministic, so any hit can be returned as is. Cache failures
// never fail a request: a broken Get counts as a miss and Set errors are only
// logged.
type CachedLayouter struct {
	*Layouter
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewCached creates a CachedLayouter. A nil cache disables caching, a nil
// keyer selects cache.DefaultKeyer and a nil logger log.Default().
func NewCached(l *Layouter, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *CachedLayouter {
	if l == nil {
		l = defaultLayouter
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedLayouter{Layouter: l, Cache: c, Keyer: keyer, TTL: cache.DefaultTTL, Logger: logger}
}

func (c *CachedLayouter) keyOpts() cache.RouteKeyOpts {
	return cache.RouteKeyOpts{
		AlignTolerance:    c.opts.AlignTolerance,
		CollapseTolerance: c.opts.CollapseTolerance,
	}
}

// ConnectWithCacheInfo routes req and reports whether the result came from
// the cache.
func (c *CachedLayouter) ConnectWithCacheInfo(ctx context.Context, req ConnectRequest) ([]geom.Bend, bool, error) {
	key := c.Keyer.ConnectKey(req.Source, req.Target, req.Start, req.End, c.keyOpts())

	var wp []geom.Bend
	if c.lookup(ctx, "connect", key, &wp) {
		return wp, true, nil
	}

	start := time.Now()
	wp, err := c.Layouter.Connect(req)
	observability.Routing().OnConnect(ctx, PairOf(wp).String(), len(wp), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	c.store(ctx, "connect", key, wp)
	return wp, false, nil
}

// ConnectCached is ConnectWithCacheInfo without the hit flag.
func (c *CachedLayouter) ConnectCached(ctx context.Context, req ConnectRequest) ([]geom.Bend, error) {
	wp, _, err := c.ConnectWithCacheInfo(ctx, req)
	return wp, err
}

// RepairWithCacheInfo repairs req and reports whether the result came from
// the cache.
func (c *CachedLayouter) RepairWithCacheInfo(ctx context.Context, req RepairRequest) (Repair, bool, error) {
	key := c.Keyer.RepairKey(req.Source, req.Target, req.Start, req.End, req.Waypoints, c.keyOpts())

	var res Repair
	if c.lookup(ctx, "repair", key, &res) {
		return res, true, nil
	}

	start := time.Now()
	res, err := c.Layouter.Repair(req)
	observability.Routing().OnRepair(ctx, res.Kind.String(), len(req.Waypoints), time.Since(start), err)
	if err != nil {
		return Repair{}, false, err
	}
	if res.Kind == RepairRelayout {
		c.Logger.Debug("connection relayouted", "reason", res.Reason)
	}
	c.store(ctx, "repair", key, res)
	return res, false, nil
}

// RepairCached is RepairWithCacheInfo without the hit flag.
func (c *CachedLayouter) RepairCached(ctx context.Context, req RepairRequest) (Repair, error) {
	res, _, err := c.RepairWithCacheInfo(ctx, req)
	return res, err
}

func (c *CachedLayouter) lookup(ctx context.Context, keyType, key string, v any) bool {
	data, hit, err := c.Cache.Get(ctx, key)
	if err != nil {
		c.Logger.Warn("cache get failed", "type", keyType, "error", err)
	}
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (c *CachedLayouter) store(ctx context.Context, keyType, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
		c.Logger.Warn("cache set failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
