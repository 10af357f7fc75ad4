// Package cache memoizes routing and rendering results.
//
// Routing a single connection is cheap, but the API and the CLI see the same
// requests over and over (a client replaying a drag, a diagram re-rendered
// after every edit). Results are stored as opaque bytes under keys derived
// from the full request, so a hit is always safe to reuse.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI.
//   - [RedisCache]: shared cache for multi-instance API deployments.
//   - [NullCache]: caching disabled.
//
// # Keys
//
// A [Keyer] turns requests into keys. [DefaultKeyer] hashes every field that
// affects the result, including the layout options, so changing a tolerance
// never returns a stale route. [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/orthoroute/pkg/geom"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// DefaultTTL is used when callers do not configure an expiry.
const DefaultTTL = 24 * time.Hour

// RouteKeyOpts holds the layout options that change a route.
type RouteKeyOpts struct {
	AlignTolerance    float64 `json:"align_tolerance"`
	CollapseTolerance float64 `json:"collapse_tolerance"`
}

// RenderKeyOpts holds the options that change a rendered diagram.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Engine string `json:"engine"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ConnectKey keys a fresh route between two shapes.
	ConnectKey(source, target geom.Rect, start, end geom.Direction, opts RouteKeyOpts) string

	// RepairKey keys the repair of an existing route.
	RepairKey(source, target geom.Rect, start, end geom.Direction, waypoints []geom.Bend, opts RouteKeyOpts) string

	// RenderKey keys a rendered diagram by the hash of its DOT source.
	RenderKey(dotHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes request fields into keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ConnectKey implements Keyer.
func (DefaultKeyer) ConnectKey(source, target geom.Rect, start, end geom.Direction, opts RouteKeyOpts) string {
	return hashKey("connect", source, target, start, end, opts)
}

// RepairKey implements Keyer.
func (DefaultKeyer) RepairKey(source, target geom.Rect, start, end geom.Direction, waypoints []geom.Bend, opts RouteKeyOpts) string {
	return hashKey("repair", source, target, start, end, waypoints, opts)
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(dotHash string, opts RenderKeyOpts) string {
	return hashKey("render", dotHash, opts)
}

var _ Keyer = DefaultKeyer{}
