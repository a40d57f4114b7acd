// Package repositories implements SQLite persistence for cached catalog
// lookups.
//
// The launcher re-runs a query on every keystroke, so repeated searches
// within a short window are answered from the cache instead of the
// network. Cache rows are keyed by (query, kind) and expire after a
// configurable TTL. Storage failures are recoverable by callers: a miss
// or error simply degrades to a live search.
package repositories
