// Package data provides thread-safe storage for the knowledge snapshot used
// by the safety evaluator. The Container swaps whole snapshots atomically so
// evaluations never observe a half-updated rule set.
package data

import (
	"sync/atomic"
	"time"

	"github.com/mindhub/medsafety-api/interfaces"
	"github.com/mindhub/medsafety-api/knowledge"
	"github.com/mindhub/medsafety-api/logging"
)

// Compile-time check to ensure Container implements KnowledgeStore
var _ interfaces.KnowledgeStore = (*Container)(nil)

// Container holds the current knowledge snapshot behind atomic pointers.
type Container struct {
	base            atomic.Value // *knowledge.Base
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewContainer creates a Container holding an empty snapshot.
func NewContainer() *Container {
	c := &Container{}
	c.base.Store(&knowledge.Base{
		Interactions:    map[string][]knowledge.DrugInteraction{},
		AllergyRules:    map[string][]knowledge.AllergyRule{},
		ConditionRules:  map[string][]knowledge.ConditionRule{},
		AgeRestrictions: map[string]knowledge.AgeRestriction{},
	})
	c.lastUpdated.Store(time.Time{})
	c.serverStartTime.Store(time.Time{})
	return c
}

// GetBase returns the current knowledge snapshot. The returned Base must be
// treated as read-only.
func (c *Container) GetBase() *knowledge.Base {
	if v := c.base.Load(); v != nil {
		if base, ok := v.(*knowledge.Base); ok {
			return base
		}
	}

	logging.Warn("Knowledge snapshot is empty or invalid")
	return &knowledge.Base{}
}

// GetLastUpdated returns the timestamp of the last snapshot swap.
func (c *Container) GetLastUpdated() time.Time {
	if v := c.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a snapshot reload is currently in progress.
func (c *Container) IsUpdating() bool {
	return c.updating.Load()
}

// SetServerStartTime sets the server start time.
func (c *Container) SetServerStartTime(startTime time.Time) {
	c.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time.
func (c *Container) GetServerStartTime() time.Time {
	if v := c.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateBase atomically installs a new knowledge snapshot.
func (c *Container) UpdateBase(base *knowledge.Base) {
	c.base.Store(base)
	c.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a snapshot reload.
// Returns true if the reload can proceed, false if another is in progress.
func (c *Container) BeginUpdate() bool {
	return c.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a snapshot reload.
func (c *Container) EndUpdate() {
	c.updating.Store(false)
}
