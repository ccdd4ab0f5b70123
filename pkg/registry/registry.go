// Package registry tracks the data series a chart is built from.
//
// Series components register themselves under a key and unregister when they
// go away; stacks, grouped bars and the nearest-datum locator read the
// registered series. The registry never mutates registered data.
package registry

import (
	"slices"
	"sync"

	"github.com/matzehuels/chartmotion/pkg/errors"
	"github.com/matzehuels/chartmotion/pkg/stack"
)

// Entry is one registered series.
type Entry[D any] struct {
	Key      string
	Data     []D
	Category func(D) any
	Value    func(D) float64
	// DatumKey identifies a datum within the series across updates.
	DatumKey func(D) string
	// Color optionally assigns a colour per datum.
	Color func(D) string
}

// Registry is an ordered set of series keyed by Entry.Key. It is safe for
// concurrent use.
type Registry[D any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[D]
	order   []string
}

// New creates an empty registry.
func New[D any]() *Registry[D] {
	return &Registry[D]{entries: make(map[string]Entry[D])}
}

// Register adds a series, replacing any entry with the same key in place.
func (r *Registry[D]) Register(e Entry[D]) error {
	if e.Category == nil {
		return errors.New(errors.ErrCodeMissingAccessor, "series %q: category accessor is required", e.Key)
	}
	if e.Value == nil {
		return errors.New(errors.ErrCodeMissingAccessor, "series %q: value accessor is required", e.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.Key]; !ok {
		r.order = append(r.order, e.Key)
	}
	r.entries[e.Key] = e
	return nil
}

// Unregister removes series by key. Unknown keys are ignored.
func (r *Registry[D]) Unregister(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		if _, ok := r.entries[k]; !ok {
			continue
		}
		delete(r.entries, k)
		r.order = slices.DeleteFunc(r.order, func(o string) bool { return o == k })
	}
}

// Get returns the series registered under key.
func (r *Registry[D]) Get(key string) (Entry[D], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	return e, ok
}

// Keys lists registered keys in registration order.
func (r *Registry[D]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len is the number of registered series.
func (r *Registry[D]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Entries returns every series in registration order.
func (r *Registry[D]) Entries() []Entry[D] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry[D], len(r.order))
	for i, k := range r.order {
		out[i] = r.entries[k]
	}
	return out
}

// StackSeries converts the registered series into stack input, in
// registration order.
func (r *Registry[D]) StackSeries() []stack.Series[D] {
	entries := r.Entries()
	out := make([]stack.Series[D], len(entries))
	for i, e := range entries {
		out[i] = stack.Series[D]{Key: e.Key, Data: e.Data, Category: e.Category, Value: e.Value}
	}
	return out
}

// Stack builds a stack over every registered series.
func (r *Registry[D]) Stack(cfg stack.Config) (*stack.Result[D], error) {
	return stack.Build(r.StackSeries(), cfg)
}
