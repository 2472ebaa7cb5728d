// Package routetable holds the in-memory model -> backend URL index that the
// request router reads on every request. The table is derived entirely from
// the config store and replaced wholesale on every rebuild; it carries no
// state of its own.
package routetable

import (
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ikignosis/sopy/internal/db"
)

// snapshot is an immutable generation of the table. Readers load the current
// snapshot once and never see entries from two generations mixed.
type snapshot struct {
	routes map[string]string
	models []string // sorted model names for stable listings
}

var emptySnapshot = &snapshot{routes: map[string]string{}}

// Table maps model names to a single resolved backend URL.
//
// Resolve and Models are lock-free; Rebuild serializes against concurrent
// rebuilds so the last rebuild to run reflects every store write committed
// before it started. That is the consistency bound: a racing rebuild pair may
// transiently publish the older snapshot, which the next rebuild corrects.
type Table struct {
	current   atomic.Pointer[snapshot]
	rebuildMu sync.Mutex
}

// New returns an empty table. Call Rebuild to populate it from the store.
func New() *Table {
	t := &Table{}
	t.current.Store(emptySnapshot)
	return t
}

// Rebuild recomputes the whole table from the store's backends and model
// mappings and publishes it as a single atomic swap. For each mapped model the
// provider's first URL by insertion order wins; models whose provider has no
// URLs are omitted. Pure read of the store.
func (t *Table) Rebuild(store *db.Store) error {
	t.rebuildMu.Lock()
	defer t.rebuildMu.Unlock()

	backends, err := store.ListBackends()
	if err != nil {
		return err
	}
	mappings, err := store.ListModelMappings()
	if err != nil {
		return err
	}

	routes := make(map[string]string, len(mappings))
	for model, provider := range mappings {
		urls := backends[provider]
		if len(urls) == 0 {
			continue
		}
		routes[model] = urls[0]
	}

	models := make([]string, 0, len(routes))
	for model := range routes {
		models = append(models, model)
	}
	sort.Strings(models)

	t.current.Store(&snapshot{routes: routes, models: models})
	log.Printf("🗺️ Route table rebuilt: %d models routed", len(routes))
	return nil
}

// Resolve returns the backend URL serving model, or false if the model is
// unmapped or its provider has no URLs.
func (t *Table) Resolve(model string) (string, bool) {
	url, ok := t.current.Load().routes[model]
	return url, ok
}

// Models returns the currently routed model names in sorted order. The
// returned slice is shared with the snapshot and must not be mutated.
func (t *Table) Models() []string {
	return t.current.Load().models
}

// Len reports how many models are currently routed.
func (t *Table) Len() int {
	return len(t.current.Load().routes)
}
