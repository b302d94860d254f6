// Package workflow holds the phase-progression rules: which phases an order
// runs through, what status each phase is in, and which transitions are
// allowed. Everything here is pure computation over already-loaded records;
// persistence and HTTP stay outside.
package workflow

import (
	"sort"

	"threadworks/internal/storage"
)

// Catalog is the ordered set of phase definitions, sorted once by
// sequenceOrder on construction.
type Catalog struct {
	phases []storage.PhaseConfig
}

func NewCatalog(phases []storage.PhaseConfig) *Catalog {
	sorted := make([]storage.PhaseConfig, len(phases))
	copy(sorted, phases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SequenceOrder < sorted[j].SequenceOrder
	})
	return &Catalog{phases: sorted}
}

// All returns every phase, including deactivated ones.
func (c *Catalog) All() []storage.PhaseConfig {
	return c.phases
}

// Active returns the phases available for new orders.
func (c *Catalog) Active() []storage.PhaseConfig {
	var out []storage.PhaseConfig
	for _, p := range c.phases {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

// Mandatory returns the active phases every order must include.
func (c *Catalog) Mandatory() []storage.PhaseConfig {
	var out []storage.PhaseConfig
	for _, p := range c.phases {
		if p.IsActive && p.IsMandatory {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) ByID(id string) (storage.PhaseConfig, bool) {
	for _, p := range c.phases {
		if p.ID == id {
			return p, true
		}
	}
	return storage.PhaseConfig{}, false
}

func (c *Catalog) ByKey(key string) (storage.PhaseConfig, bool) {
	for _, p := range c.phases {
		if p.PhaseKey == key {
			return p, true
		}
	}
	return storage.PhaseConfig{}, false
}

// ByCategory groups the active phases, keeping sequence order inside each
// group.
func (c *Catalog) ByCategory() map[string][]storage.PhaseConfig {
	out := map[string][]storage.PhaseConfig{}
	for _, p := range c.phases {
		if p.IsActive {
			out[p.Category] = append(out[p.Category], p)
		}
	}
	return out
}

// ForOrder returns the order's selected phases in sequence order. Phases the
// order references but the catalog no longer knows are dropped.
func (c *Catalog) ForOrder(order *storage.Order) []storage.PhaseConfig {
	selected := map[string]bool{}
	for _, id := range order.PhaseConfigIDs {
		selected[id] = true
	}

	var out []storage.PhaseConfig
	for _, p := range c.phases {
		if selected[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
