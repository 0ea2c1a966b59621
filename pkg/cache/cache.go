// Package cache stores rendered artifacts keyed by document fingerprint.
//
// A document's fingerprint ([score.Fingerprint]) changes whenever its
// content does, so cache entries never need invalidation: a changed score
// simply produces new keys. Entries still carry a TTL so that stale
// artifacts age out of shared backends.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry under a directory (CLI)
//   - [RedisCache]: a Redis server shared by several processes (server)
//
// Wrap any backend with [Observe] to report hits, misses and writes to the
// registered observability hooks.
//
// # Keys
//
// A [Keyer] derives keys from the fingerprint and the options that affect
// the cached bytes:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(score.Fingerprint(doc), cache.ArtifactKeyOpts{Format: "svg", Width: 1000})
//
// [NewScopedKeyer] prefixes every key, which keeps several deployments
// apart on one Redis server.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Entry lifetimes by kind.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLSequence = 7 * 24 * time.Hour
)

// Key prefixes, also reported as the key type to cache hooks.
const (
	KindLayout   = "layout"
	KindArtifact = "artifact"
	KindSequence = "sequence"
)

// LayoutKeyOpts are the layout options that change the computed geometry.
type LayoutKeyOpts struct {
	Width  float64 `json:"width"`
	Unit   float64 `json:"unit"`
	Header bool    `json:"header"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Style       string  `json:"style"`
	Width       float64 `json:"width"`
	Unit        float64 `json:"unit"`
	Header      bool    `json:"header"`
	Interactive bool    `json:"interactive,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(fingerprint string, opts LayoutKeyOpts) string
	ArtifactKey(fingerprint string, opts ArtifactKeyOpts) string
	SequenceKey(fingerprint string) string
}

// DefaultKeyer hashes the fingerprint together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns the key of a computed layout.
func (DefaultKeyer) LayoutKey(fingerprint string, opts LayoutKeyOpts) string {
	return hashKey(KindLayout, fingerprint, opts)
}

// ArtifactKey returns the key of a rendered artifact.
func (DefaultKeyer) ArtifactKey(fingerprint string, opts ArtifactKeyOpts) string {
	return hashKey(KindArtifact, fingerprint, opts)
}

// SequenceKey returns the key of a resolved playback plan.
func (DefaultKeyer) SequenceKey(fingerprint string) string {
	return hashKey(KindSequence, fingerprint)
}

// ScopedKeyer prefixes the keys of another keyer.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(fingerprint string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(fingerprint, opts)
}

func (k *ScopedKeyer) ArtifactKey(fingerprint string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(fingerprint, opts)
}

func (k *ScopedKeyer) SequenceKey(fingerprint string) string {
	return k.prefix + k.inner.SequenceKey(fingerprint)
}
