// Package interfaces defines core abstractions for the medication safety API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"time"

	"github.com/mindhub/medsafety-api/knowledge"
)

// KnowledgeStore defines the contract for knowledge snapshot storage.
// It provides thread-safe access to the rule tables with atomic snapshot
// swaps for zero-downtime updates.
type KnowledgeStore interface {
	// Snapshot retrieval
	GetBase() *knowledge.Base
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time
	SetServerStartTime(startTime time.Time)

	// Snapshot update methods
	UpdateBase(base *knowledge.Base)
	BeginUpdate() bool
	EndUpdate()
}

// KnowledgeLoader defines the contract for producing a validated knowledge
// snapshot from its configured source (builtin tables or a knowledge file).
type KnowledgeLoader interface {
	Load() (*knowledge.Base, error)
}

// MedicationDirectory defines the contract for the medication reference
// database. Lookup resolves a free-text medication name to its closest
// reference entry; a nil result with a nil error means no match.
type MedicationDirectory interface {
	Lookup(ctx context.Context, name string) (*knowledge.MedicationReference, error)
	Search(ctx context.Context, name string, limit int) ([]knowledge.MedicationReference, error)
	Ping(ctx context.Context) error

	// Available reports whether the directory is configured. Evaluation
	// degrades gracefully when false.
	Available() bool
}

// Scheduler defines the contract for knowledge refresh scheduling and
// staleness monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// InputValidator defines the contract for request input validation.
// It guards the evaluator against malformed or hostile free-text input.
type InputValidator interface {
	// ValidateTerm validates a medication, allergy or condition name
	ValidateTerm(term string) error

	// ValidateAge validates a declared patient age
	ValidateAge(age int) error
}
