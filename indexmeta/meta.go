// Package indexmeta carries the inbound, immutable-per-import metadata
// attached at ingestion time.
package indexmeta

import "time"

// Meta is the IndexMeta data model.
type Meta struct {
	CorrelationID string
	Filename      string
	Timestamp     time.Time
	Tags          map[string]struct{}
	Properties    map[string]string
	FallbackCRS   string // empty means unset
}

// HasFallbackCRS reports whether a fallback CRS was supplied.
func (m Meta) HasFallbackCRS() bool {
	return m.FallbackCRS != ""
}

// TagSet builds a Meta's Tags field from a slice, deduplicating.
func TagSet(tags ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		out[t] = struct{}{}
	}
	return out
}
