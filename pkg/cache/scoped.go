package cache

import "github.com/matzehuels/orthoroute/pkg/geom"

// ScopedKeyer wraps a Keyer with a prefix, so several deployments (or
// several users of one API) can share a Redis instance without sharing
// entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ConnectKey(source, target geom.Rect, start, end geom.Direction, opts RouteKeyOpts) string {
	return k.prefix + k.inner.ConnectKey(source, target, start, end, opts)
}

func (k *ScopedKeyer) RepairKey(source, target geom.Rect, start, end geom.Direction, waypoints []geom.Bend, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RepairKey(source, target, start, end, waypoints, opts)
}

func (k *ScopedKeyer) RenderKey(dotHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(dotHash, opts)
}
