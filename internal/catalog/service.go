// Package catalog assembles the candidate perfume pool for matching: cached
// remote search responses, the Fragella API, locally persisted records, and a
// bundled fallback file, unioned and de-duplicated by id.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"askseba/backend/internal/fragella"
	"askseba/backend/internal/matching"
	"askseba/backend/internal/store"
)

// Source labels for candidate records.
const (
	SourceFragella = "fragella"
	SourceLocal    = "local"
)

// Service provides the unified candidate pool.
type Service struct {
	db           *store.Database
	client       *fragella.Client
	fallbackPath string
	cacheTTL     time.Duration

	fallbackOnce sync.Once
	fallbackRecs []Record
	fallbackErr  error
}

// NewService wires the pool provider. The fragella client may be nil when no
// API key is configured; the service then serves local and fallback data only.
func NewService(db *store.Database, client *fragella.Client, fallbackPath string, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 6 * time.Hour
	}
	return &Service{
		db:           db,
		client:       client,
		fallbackPath: fallbackPath,
		cacheTTL:     cacheTTL,
	}
}

// Search returns the candidate pool for the supplied term. Resolution order:
// persisted search cache, remote API, local store; when everything else comes
// up empty the bundled fallback file is used.
func (s *Service) Search(ctx context.Context, query string) ([]matching.Perfume, error) {
	if s == nil {
		return nil, errors.New("catalog service is nil")
	}

	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		key = "perfume"
	}

	pool := make([]matching.Perfume, 0, 64)
	seen := make(map[string]struct{})

	remote, fromCache := s.remotePool(ctx, key)
	for _, p := range remote {
		appendUnique(&pool, seen, p)
	}

	local, err := s.localPool()
	if err != nil {
		logrus.WithError(err).Warn("list local perfumes")
	}
	for _, p := range local {
		appendUnique(&pool, seen, p)
	}

	if len(pool) == 0 {
		fallback, err := s.Fallback()
		if err != nil {
			return nil, err
		}
		pool = append(pool, fallback...)
		logrus.WithFields(logrus.Fields{
			"query": key,
			"count": len(pool),
		}).Warn("catalog pool served entirely from fallback file")
	}

	if size := s.fallbackSize(); size > 0 && len(pool) == size {
		logrus.WithFields(logrus.Fields{
			"query":         key,
			"pool_size":     len(pool),
			"fallback_size": size,
		}).Error("pool size equals fallback size - Fragella connection may be broken, check search cache and API key")
	}

	logrus.WithFields(logrus.Fields{
		"query":      key,
		"pool_size":  len(pool),
		"from_cache": fromCache,
	}).Info("catalog pool assembled")
	return pool, nil
}

// remotePool serves the Fragella slice of the pool, preferring the persisted
// cache over a live API call.
func (s *Service) remotePool(ctx context.Context, key string) ([]matching.Perfume, bool) {
	if s.db != nil {
		entry, err := s.db.GetSearchCache(key, s.cacheTTL)
		if err != nil {
			logrus.WithError(err).Warn("read search cache")
		} else if entry != nil {
			var records []Record
			if err := json.Unmarshal([]byte(entry.PayloadJSON), &records); err != nil {
				logrus.WithError(err).WithField("query", key).Warn("decode cached search payload")
			} else {
				return recordsToMatching(records), true
			}
		}
	}

	if s.client == nil {
		return nil, false
	}

	result, err := s.client.Search(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("query", key).Warn("fragella search failed")
		return nil, false
	}

	records := make([]Record, 0, len(result.Fragrances))
	for _, fr := range result.Fragrances {
		records = append(records, recordFromFragrance(fr))
	}

	if s.db != nil && len(records) > 0 {
		payload, err := json.Marshal(records)
		if err == nil {
			if err := s.db.PutSearchCache(key, string(payload), len(records)); err != nil {
				logrus.WithError(err).Warn("persist search cache")
			}
		}
	}

	return recordsToMatching(records), false
}

func (s *Service) localPool() ([]matching.Perfume, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.ListPerfumes()
	if err != nil {
		return nil, err
	}
	out := make([]matching.Perfume, 0, len(rows))
	for i := range rows {
		out = append(out, FromStore(&rows[i]))
	}
	return out, nil
}

// ClearCache purges the persisted search cache and the client's in-memory
// cache, returning the number of persisted rows removed.
func (s *Service) ClearCache() (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("catalog service has no database")
	}
	removed, err := s.db.PurgeSearchCache()
	if err != nil {
		return 0, err
	}
	if s.client != nil {
		s.client.InvalidateCache()
	}
	logrus.WithField("removed", removed).Info("search cache purged")
	return removed, nil
}

// Stats reports cache and pool counts for the health endpoint.
type Stats struct {
	CacheEntries  int64
	LocalPerfumes int64
	FallbackSize  int
	RemoteEnabled bool
}

// Stats gathers data-source statistics.
func (s *Service) Stats() (Stats, error) {
	stats := Stats{RemoteEnabled: s.client != nil, FallbackSize: s.fallbackSize()}
	if s.db == nil {
		return stats, nil
	}
	cacheCount, err := s.db.CountSearchCache()
	if err != nil {
		return stats, err
	}
	stats.CacheEntries = cacheCount
	localCount, err := s.db.CountPerfumes("")
	if err != nil {
		return stats, err
	}
	stats.LocalPerfumes = localCount
	return stats, nil
}

func appendUnique(pool *[]matching.Perfume, seen map[string]struct{}, p matching.Perfume) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return
	}
	if _, ok := seen[id]; ok {
		return
	}
	seen[id] = struct{}{}
	*pool = append(*pool, p)
}
