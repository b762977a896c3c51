// Package catalog maintains the ordered pipeline stage catalog backing the
// sales board.
package catalog

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/store"
)

// DefaultStages is the built-in ordered stage list used for render
// continuity when the backing store is unavailable. It is never persisted.
var DefaultStages = []models.PipelineStage{
	{Name: "New", DisplayName: "New", Order: 1, IsActive: true},
	{Name: "Contacted", DisplayName: "Contacted", Order: 2, IsActive: true},
	{Name: "FollowUp", DisplayName: "Follow Up", Order: 3, IsActive: true},
	{Name: "Offer", DisplayName: "Offer", Order: 4, IsActive: true},
	{Name: "Negotiation", DisplayName: "Negotiation", Order: 5, IsActive: true},
}

// Catalog serves stage listings from a process-wide cache. The catalog is
// read-mostly: the cache is refreshed lazily after Invalidate.
type Catalog struct {
	store  store.Store
	logger *slog.Logger

	mu     sync.RWMutex
	stages []models.PipelineStage
	valid  bool
}

// New creates a catalog over the given store.
func New(st store.Store, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{store: st, logger: logger}
}

// Invalidate drops the cached snapshot. The next read reloads from the store.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.stages = nil
	c.mu.Unlock()
}

// allStages returns the cached full stage list, reloading when stale.
// The bool result reports whether the store could be read; on false the
// caller should fall back to DefaultStages.
func (c *Catalog) allStages() ([]models.PipelineStage, bool) {
	c.mu.RLock()
	if c.valid {
		stages := c.stages
		c.mu.RUnlock()
		return stages, true
	}
	c.mu.RUnlock()

	stages, err := c.store.ListStages()
	if err != nil {
		c.logger.Warn("catalog: stage list unavailable, using built-in defaults",
			slog.String("error", err.Error()))
		return nil, false
	}

	c.mu.Lock()
	c.stages = stages
	c.valid = true
	c.mu.Unlock()
	return stages, true
}

// ListActiveStages returns the stages shown on the active board: non-system,
// active, ordered by position with ties broken by name. The call is
// restartable and never fails; when the store is unreachable the built-in
// default list is returned for render continuity.
func (c *Catalog) ListActiveStages() []models.PipelineStage {
	stages, ok := c.allStages()
	if !ok {
		return append([]models.PipelineStage(nil), DefaultStages...)
	}

	out := make([]models.PipelineStage, 0, len(stages))
	for _, s := range stages {
		if s.IsSystem || !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ListAllStageNames returns every stage name a dropdown may need to show:
// the full catalog (inactive and system stages included) plus any stage
// string still referenced by an existing lead, sorted ascending.
func (c *Catalog) ListAllStageNames() []string {
	seen := make(map[string]struct{})

	stages, ok := c.allStages()
	if !ok {
		stages = DefaultStages
	}
	for _, s := range stages {
		seen[s.Name] = struct{}{}
	}

	if referenced, err := c.store.LeadStageNames(); err == nil {
		for _, name := range referenced {
			seen[name] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the catalog entry for name, or false when the name is not
// in the catalog (leads may still carry such a value).
func (c *Catalog) Lookup(name string) (models.PipelineStage, bool) {
	stages, ok := c.allStages()
	if !ok {
		stages = DefaultStages
	}
	for _, s := range stages {
		if s.Name == name {
			return s, true
		}
	}
	return models.PipelineStage{}, false
}
