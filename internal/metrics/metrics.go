// Package metrics implements an in-process counter registry exposed in text
// exposition format. Counters are monotonic and use atomic increments, so
// concurrent enrichment tasks can update them without locking.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Counter is a monotonically increasing counter.
type Counter struct {
	value atomic.Int64
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Add(n int64) {
	c.value.Add(n)
}

func (c *Counter) Value() int64 {
	return c.value.Load()
}

// Registry holds named counters with label sets.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter // keyed by name + serialized labels
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*Counter),
	}
}

// Counter returns the counter for the given name and labels, creating it on
// first use. Labels are serialized in sorted key order so that equal label
// sets always map to the same series.
func (r *Registry) Counter(name string, labels map[string]string) *Counter {
	key := seriesKey(name, labels)

	r.mu.RLock()
	c, ok := r.counters[key]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[key]; ok {
		return c
	}
	c = &Counter{}
	r.counters[key] = c
	return c
}

// Inc is shorthand for Counter(name, labels).Inc().
func (r *Registry) Inc(name string, labels map[string]string) {
	r.Counter(name, labels).Inc()
}

// WriteText writes all series in text exposition format, sorted by series
// key for stable output.
func (r *Registry) WriteText(w io.Writer) error {
	r.mu.RLock()
	keys := make([]string, 0, len(r.counters))
	for k := range r.counters {
		keys = append(keys, k)
	}
	snapshot := make(map[string]int64, len(r.counters))
	for k, c := range r.counters {
		snapshot[k] = c.Value()
	}
	r.mu.RUnlock()

	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s %d\n", k, snapshot[k]); err != nil {
			return err
		}
	}
	return nil
}

func seriesKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", k, labels[k])
	}
	b.WriteByte('}')
	return b.String()
}
