package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotlite/internal/models"
	"github.com/desertthunder/spotlite/internal/shared"
)

// ErrCacheMiss indicates no fresh cached results exist for a query.
var ErrCacheMiss = errors.New("search cache miss")

// SearchCache stores normalized search results keyed by query and kind.
type SearchCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSearchCache creates a cache with the given freshness window.
func NewSearchCache(db *sql.DB, ttl time.Duration) *SearchCache {
	return &SearchCache{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

// normalizeQuery canonicalizes a query for cache keying.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get returns cached results for a query. Returns [ErrCacheMiss] when no
// row exists or the row is older than the TTL; stale rows are removed.
func (c *SearchCache) Get(query string, kind models.Kind) ([]models.SearchResult, error) {
	key := normalizeQuery(query)

	row := c.db.QueryRow(
		`SELECT results, fetched_at FROM search_cache WHERE query = ? AND kind = ?`,
		key, string(kind),
	)

	var blob string
	var fetchedAt time.Time
	if err := row.Scan(&blob, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read search cache: %w", err)
	}

	if c.now().Sub(fetchedAt) > c.ttl {
		_, _ = c.db.Exec(`DELETE FROM search_cache WHERE query = ? AND kind = ?`, key, string(kind))
		return nil, ErrCacheMiss
	}

	var results []models.SearchResult
	if err := json.Unmarshal([]byte(blob), &results); err != nil {
		return nil, fmt.Errorf("failed to decode cached results: %w", err)
	}

	return results, nil
}

// Put stores results for a query, replacing any previous row for the
// same (query, kind) pair.
func (c *SearchCache) Put(query string, kind models.Kind, results []models.SearchResult) error {
	blob, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT INTO search_cache (id, query, kind, results, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (query, kind) DO UPDATE SET
			results = excluded.results,
			fetched_at = excluded.fetched_at`,
		shared.GenerateID(), normalizeQuery(query), string(kind), string(blob), c.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write search cache: %w", err)
	}

	return nil
}

// Clear removes all cached rows.
func (c *SearchCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM search_cache`); err != nil {
		return fmt.Errorf("failed to clear search cache: %w", err)
	}
	return nil
}

// Size returns the number of cached rows.
func (c *SearchCache) Size() (int, error) {
	var count int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM search_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count search cache: %w", err)
	}
	return count, nil
}
