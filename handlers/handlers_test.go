package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mindhub/medsafety-api/data"
	"github.com/mindhub/medsafety-api/knowledge"
	"github.com/mindhub/medsafety-api/safety"
	"github.com/mindhub/medsafety-api/validation"
)

// ===== TEST FIXTURES =====

type mockDirectory struct {
	refs      []knowledge.MedicationReference
	err       error
	pingError error
	available bool
}

func (m *mockDirectory) Lookup(ctx context.Context, name string) (*knowledge.MedicationReference, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.refs {
		if strings.EqualFold(m.refs[i].Name, name) {
			return &m.refs[i], nil
		}
	}
	return nil, nil
}

func (m *mockDirectory) Search(ctx context.Context, name string, limit int) ([]knowledge.MedicationReference, error) {
	if m.err != nil {
		return nil, m.err
	}
	var matches []knowledge.MedicationReference
	for _, ref := range m.refs {
		if strings.Contains(strings.ToLower(ref.Name), strings.ToLower(name)) {
			matches = append(matches, ref)
		}
	}
	return matches, nil
}

func (m *mockDirectory) Ping(ctx context.Context) error { return m.pingError }
func (m *mockDirectory) Available() bool                { return m.available }

// nilBaseStore simulates a store with no snapshot at all, forcing the
// evaluator error path.
type nilBaseStore struct{}

func (nilBaseStore) GetBase() *knowledge.Base       { return nil }
func (nilBaseStore) GetLastUpdated() time.Time      { return time.Time{} }
func (nilBaseStore) IsUpdating() bool               { return false }
func (nilBaseStore) GetServerStartTime() time.Time  { return time.Time{} }
func (nilBaseStore) SetServerStartTime(_ time.Time) {}
func (nilBaseStore) UpdateBase(_ *knowledge.Base)   {}
func (nilBaseStore) BeginUpdate() bool              { return true }
func (nilBaseStore) EndUpdate()                     {}

func newTestHandler(t *testing.T, base *knowledge.Base, directory *mockDirectory) *Handler {
	t.Helper()
	container := data.NewContainer()
	if base != nil {
		container.UpdateBase(base)
	}
	if directory == nil {
		directory = &mockDirectory{}
	}
	evaluator := safety.NewEvaluator(container, directory)
	return NewHandler(container, evaluator, directory, validation.NewValidator())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v\nbody: %s", err, recorder.Body.String())
	}
	return env
}

func postEvaluate(handler *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/safety/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.EvaluateSafety(recorder, req)
	return recorder
}

// ===== EVALUATE TESTS =====

func TestEvaluateSafety_HappyPath(t *testing.T) {
	handler := newTestHandler(t, knowledge.Builtin(), nil)

	recorder := postEvaluate(handler, `{
		"medications": [
			{"medication_name": "warfarina", "dosage": "5mg", "frequency": "diaria"},
			{"medication_name": "aspirina", "dosage": "100mg"}
		],
		"patient_allergies": ["penicilina"],
		"patient_conditions": ["asma"],
		"patient_age": 70
	}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	env := decodeEnvelope(t, recorder)
	if !env.Success {
		t.Fatalf("Expected success envelope, got: %s", recorder.Body.String())
	}

	var report safety.Report
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if report.ReportID == "" {
		t.Error("Expected a report id")
	}
	if !report.HasInteractions {
		t.Error("Expected interactions for warfarina + aspirina + asma")
	}
	if report.SafetyScore < 0 || report.SafetyScore > 100 {
		t.Errorf("Safety score out of range: %d", report.SafetyScore)
	}
}

func TestEvaluateSafety_EmptyMedications(t *testing.T) {
	handler := newTestHandler(t, knowledge.Builtin(), nil)

	for _, body := range []string{`{"medications": []}`, `{}`} {
		recorder := postEvaluate(handler, body)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("Body %s: expected 400, got %d", body, recorder.Code)
		}
		env := decodeEnvelope(t, recorder)
		if env.Success || env.Code != http.StatusBadRequest {
			t.Errorf("Body %s: unexpected envelope: %+v", body, env)
		}
	}
}

func TestEvaluateSafety_InvalidJSON(t *testing.T) {
	handler := newTestHandler(t, knowledge.Builtin(), nil)

	recorder := postEvaluate(handler, `{not json`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	env := decodeEnvelope(t, recorder)
	if env.Message != "Invalid JSON body" {
		t.Errorf("Unexpected message: %q", env.Message)
	}
}

func TestEvaluateSafety_ValidationFailures(t *testing.T) {
	handler := newTestHandler(t, knowledge.Builtin(), nil)

	tests := []struct {
		name string
		body string
	}{
		{
			"hostile medication name",
			`{"medications": [{"medication_name": "<script>alert(1)</script>"}]}`,
		},
		{
			"hostile allergy",
			`{"medications": [{"medication_name": "aspirina"}], "patient_allergies": ["../etc/passwd"]}`,
		},
		{
			"hostile condition",
			`{"medications": [{"medication_name": "aspirina"}], "patient_conditions": ["x' union select 1"]}`,
		},
		{
			"negative age",
			`{"medications": [{"medication_name": "aspirina"}], "patient_age": -5}`,
		},
		{
			"age out of range",
			`{"medications": [{"medication_name": "aspirina"}], "patient_age": 200}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postEvaluate(handler, tt.body)
			if recorder.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestEvaluateSafety_EvaluatorFailure(t *testing.T) {
	// A container that never received a snapshot returns an empty base, and
	// GetBase never returns nil, so force the error path with a nil-base store.
	handler := NewHandler(nilBaseStore{}, safety.NewEvaluator(nilBaseStore{}, &mockDirectory{}),
		&mockDirectory{}, validation.NewValidator())

	recorder := postEvaluate(handler, `{"medications": [{"medication_name": "aspirina"}]}`)
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", recorder.Code)
	}
	env := decodeEnvelope(t, recorder)
	if env.Success || env.Message == "" {
		t.Errorf("Expected an error message in the envelope, got: %+v", env)
	}
}

// ===== SEARCH TESTS =====

func searchRequest(handler *Handler, name string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Get("/api/v1/medications/{name}", handler.SearchMedications)

	req := httptest.NewRequest("GET", "/api/v1/medications/"+name, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestSearchMedications(t *testing.T) {
	directory := &mockDirectory{
		available: true,
		refs: []knowledge.MedicationReference{
			{ID: 1, Name: "Paracetamol 500mg", ActiveIngredient: "paracetamol"},
			{ID: 2, Name: "Paracetamol 1g", ActiveIngredient: "paracetamol"},
		},
	}
	handler := newTestHandler(t, knowledge.Builtin(), directory)

	recorder := searchRequest(handler, "paracetamol")
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	env := decodeEnvelope(t, recorder)
	var refs []knowledge.MedicationReference
	if err := json.Unmarshal(env.Data, &refs); err != nil {
		t.Fatalf("Failed to decode results: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("Expected 2 results, got %d", len(refs))
	}
}

func TestSearchMedications_NotFound(t *testing.T) {
	directory := &mockDirectory{available: true}
	handler := newTestHandler(t, knowledge.Builtin(), directory)

	recorder := searchRequest(handler, "inexistente")
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", recorder.Code)
	}
}

func TestSearchMedications_DirectoryDisabled(t *testing.T) {
	handler := newTestHandler(t, knowledge.Builtin(), &mockDirectory{available: false})

	recorder := searchRequest(handler, "aspirina")
	if recorder.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", recorder.Code)
	}
}

func TestSearchMedications_DirectoryError(t *testing.T) {
	directory := &mockDirectory{available: true, err: fmt.Errorf("connection reset")}
	handler := newTestHandler(t, knowledge.Builtin(), directory)

	recorder := searchRequest(handler, "aspirina")
	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", recorder.Code)
	}
}

// ===== KNOWLEDGE INFO TESTS =====

func TestKnowledgeInfo(t *testing.T) {
	handler := newTestHandler(t, knowledge.Builtin(), nil)

	req := httptest.NewRequest("GET", "/api/v1/safety/knowledge", nil)
	recorder := httptest.NewRecorder()
	handler.KnowledgeInfo(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	env := decodeEnvelope(t, recorder)
	var info struct {
		Version    string               `json:"version"`
		RuleCounts knowledge.RuleCounts `json:"rule_counts"`
	}
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("Failed to decode knowledge info: %v", err)
	}
	if info.Version != knowledge.BuiltinVersion {
		t.Errorf("Expected builtin version, got %q", info.Version)
	}
	if info.RuleCounts.Interactions == 0 {
		t.Error("Expected a non-zero interaction rule count")
	}
}

// ===== HEALTH TESTS =====

func healthRequest(handler *Handler) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest("GET", "/health", nil)
	recorder := httptest.NewRecorder()
	handler.HealthCheck(recorder, req)

	var payload map[string]any
	json.Unmarshal(recorder.Body.Bytes(), &payload)
	return recorder, payload
}

func TestHealthCheck_Healthy(t *testing.T) {
	directory := &mockDirectory{available: true}
	handler := newTestHandler(t, knowledge.Builtin(), directory)

	recorder, payload := healthRequest(handler)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}
	if payload["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", payload["status"])
	}
	if payload["directory"] != "connected" {
		t.Errorf("Expected directory connected, got %v", payload["directory"])
	}
}

func TestHealthCheck_UnhealthyWithoutRules(t *testing.T) {
	handler := newTestHandler(t, nil, nil) // empty snapshot

	recorder, payload := healthRequest(handler)
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", recorder.Code)
	}
	if payload["status"] != "unhealthy" {
		t.Errorf("Expected unhealthy, got %v", payload["status"])
	}
}

func TestHealthCheck_DegradedWhenDirectoryUnreachable(t *testing.T) {
	directory := &mockDirectory{available: true, pingError: fmt.Errorf("timeout")}
	handler := newTestHandler(t, knowledge.Builtin(), directory)

	recorder, payload := healthRequest(handler)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}
	if payload["status"] != "degraded" {
		t.Errorf("Expected degraded, got %v", payload["status"])
	}
	if payload["directory"] != "unreachable" {
		t.Errorf("Expected directory unreachable, got %v", payload["directory"])
	}
}

func TestHealthCheck_DisabledDirectory(t *testing.T) {
	handler := newTestHandler(t, knowledge.Builtin(), &mockDirectory{available: false})

	recorder, payload := healthRequest(handler)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}
	if payload["status"] != "healthy" {
		t.Errorf("Expected healthy with a disabled directory, got %v", payload["status"])
	}
	if payload["directory"] != "disabled" {
		t.Errorf("Expected directory disabled, got %v", payload["directory"])
	}
}
