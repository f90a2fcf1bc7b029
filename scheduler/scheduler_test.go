package scheduler

import (
	"fmt"
	"testing"

	"github.com/mindhub/medsafety-api/data"
	"github.com/mindhub/medsafety-api/knowledge"
)

// mockLoader implements interfaces.KnowledgeLoader with canned results.
type mockLoader struct {
	base  *knowledge.Base
	err   error
	calls int
}

func (m *mockLoader) Load() (*knowledge.Base, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.base, nil
}

func TestStartPerformsInitialLoad(t *testing.T) {
	container := data.NewContainer()
	loader := &mockLoader{base: knowledge.Builtin()}
	scheduler := NewScheduler(container, loader)
	defer scheduler.Stop()

	if err := scheduler.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if loader.calls != 1 {
		t.Errorf("Expected 1 load call, got %d", loader.calls)
	}
	if container.GetBase().Version != knowledge.BuiltinVersion {
		t.Error("Expected the loaded snapshot to be installed")
	}
	if container.GetLastUpdated().IsZero() {
		t.Error("Expected last-updated to be set after initial load")
	}
}

func TestStartFailsWhenInitialLoadFails(t *testing.T) {
	container := data.NewContainer()
	loader := &mockLoader{err: fmt.Errorf("file unreadable")}
	scheduler := NewScheduler(container, loader)
	defer scheduler.Stop()

	if err := scheduler.Start(); err == nil {
		t.Fatal("Expected Start to fail when the initial load fails")
	}
	if container.IsUpdating() {
		t.Error("Expected the update flag to be cleared after a failed reload")
	}
}

func TestReloadRefusesInvalidTables(t *testing.T) {
	container := data.NewContainer()
	container.UpdateBase(knowledge.Builtin())

	invalid := &knowledge.Base{
		Version: "bad",
		Interactions: map[string][]knowledge.DrugInteraction{
			"a": {{WithDrug: "b", Severity: "fatal"}},
		},
	}
	scheduler := NewScheduler(container, &mockLoader{base: invalid})

	if err := scheduler.reload(); err == nil {
		t.Fatal("Expected reload to refuse invalid tables")
	}

	// The previous snapshot stays installed
	if container.GetBase().Version != knowledge.BuiltinVersion {
		t.Error("Expected the previous snapshot to remain after a refused reload")
	}
}

func TestReloadSkipsWhenUpdateInProgress(t *testing.T) {
	container := data.NewContainer()
	loader := &mockLoader{base: knowledge.Builtin()}
	scheduler := NewScheduler(container, loader)

	if !container.BeginUpdate() {
		t.Fatal("Expected to acquire the update flag")
	}
	defer container.EndUpdate()

	if err := scheduler.reload(); err != nil {
		t.Fatalf("Expected a skipped reload to succeed, got: %v", err)
	}
	if loader.calls != 0 {
		t.Errorf("Expected the loader not to run, got %d calls", loader.calls)
	}
}
