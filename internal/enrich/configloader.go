package enrich

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/setgraph/enricher/internal/logger"
	"github.com/setgraph/enricher/internal/providers"
	"github.com/setgraph/enricher/internal/store"
)

// ProviderRule is one step of a field's waterfall: the provider to ask and
// the confidence it must clear.
type ProviderRule struct {
	Provider      providers.ID
	MinConfidence float64
	Rank          int
}

// ConfigStore is the narrow persistence interface the loader reads from.
type ConfigStore interface {
	FetchFieldPriorities(ctx context.Context) ([]store.FieldPriorityRow, error)
}

// ConfigLoader serves the field → provider-priority table, reloading it from
// the backing store when the cached snapshot goes stale. If a reload fails
// the last good snapshot keeps serving; enrichment never blocks on config
// refresh.
type ConfigLoader struct {
	store ConfigStore
	ttl   time.Duration
	log   *logger.Logger

	mu       sync.RWMutex
	table    map[string][]ProviderRule
	loadedAt time.Time
}

// NewConfigLoader builds a loader and performs the initial load, which must
// succeed: starting with no priority table at all is a deployment error.
func NewConfigLoader(ctx context.Context, cs ConfigStore, ttl time.Duration, log *logger.Logger) (*ConfigLoader, error) {
	l := &ConfigLoader{
		store: cs,
		ttl:   ttl,
		log:   log.WithComponent("config_loader"),
	}
	table, err := l.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial config load failed: %w", err)
	}
	l.table = table
	l.loadedAt = time.Now()
	return l, nil
}

// ReloadIfStale refreshes the table when the staleness interval has expired.
// A failed refresh keeps the stale snapshot and logs a warning.
func (l *ConfigLoader) ReloadIfStale(ctx context.Context) {
	l.mu.RLock()
	stale := time.Since(l.loadedAt) >= l.ttl
	l.mu.RUnlock()
	if !stale {
		return
	}

	table, err := l.load(ctx)
	if err != nil {
		l.log.Warn("config reload failed, serving stale configuration", "error", err)
		// Push loadedAt forward so a broken store is retried once per
		// interval instead of on every task.
		l.mu.Lock()
		l.loadedAt = time.Now()
		l.mu.Unlock()
		return
	}

	l.mu.Lock()
	l.table = table
	l.loadedAt = time.Now()
	l.mu.Unlock()
	l.log.Debug("enrichment priority configuration reloaded", "fields", len(table))
}

// ProvidersForField returns the ordered waterfall for a field. The returned
// slice is a read-only snapshot; callers must not mutate it.
func (l *ConfigLoader) ProvidersForField(field string) []ProviderRule {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table[field]
}

// ConfiguredFields returns every field with at least one provider rule,
// sorted for deterministic iteration.
func (l *ConfigLoader) ConfiguredFields() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fields := make([]string, 0, len(l.table))
	for f := range l.table {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// load fetches and validates the full priority table. Rows naming unknown
// providers fail the load here rather than being skipped at call time.
func (l *ConfigLoader) load(ctx context.Context) (map[string][]ProviderRule, error) {
	rows, err := l.store.FetchFieldPriorities(ctx)
	if err != nil {
		return nil, err
	}

	table := make(map[string][]ProviderRule)
	for _, row := range rows {
		id, err := providers.ParseID(row.Provider)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", row.FieldName, err)
		}
		if row.MinConfidence < 0 || row.MinConfidence > 1 {
			return nil, fmt.Errorf("field %q provider %q: min_confidence %v out of range", row.FieldName, row.Provider, row.MinConfidence)
		}
		table[row.FieldName] = append(table[row.FieldName], ProviderRule{
			Provider:      id,
			MinConfidence: row.MinConfidence,
		})
	}

	// Rows arrive ordered by priority_rank; the rank recorded in provenance
	// is the 1-based waterfall position.
	for field, rules := range table {
		for i := range rules {
			rules[i].Rank = i + 1
		}
		table[field] = rules
	}
	return table, nil
}
