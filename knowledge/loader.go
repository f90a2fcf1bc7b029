package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// FileLoader loads rule tables from a JSON file, falling back to the builtin
// tables when no path is configured. It implements interfaces.KnowledgeLoader.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the given knowledge file path. An empty
// path means the builtin tables are used.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// filePayload is the on-disk JSON shape of a knowledge file.
type filePayload struct {
	Version           string                       `json:"version"`
	Interactions      map[string][]DrugInteraction `json:"interactions"`
	AllergyRules      map[string][]AllergyRule     `json:"allergy_rules"`
	ConditionRules    map[string][]ConditionRule   `json:"condition_rules"`
	TherapeuticGroups []TherapeuticGroup           `json:"therapeutic_groups"`
	AgeRestrictions   map[string]AgeRestriction    `json:"age_restrictions"`
}

// Load parses and validates the configured knowledge file. Map keys are
// lowercased so lookups stay case-insensitive regardless of how the file was
// authored.
func (l *FileLoader) Load() (*Base, error) {
	if l.path == "" {
		return Builtin(), nil
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file %s: %w", l.path, err)
	}

	var payload filePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge file %s: %w", l.path, err)
	}

	if payload.Version == "" {
		return nil, fmt.Errorf("knowledge file %s is missing a version", l.path)
	}

	base := &Base{
		Version:           payload.Version,
		LoadedAt:          time.Now(),
		Interactions:      lowerKeys(payload.Interactions),
		AllergyRules:      lowerKeys(payload.AllergyRules),
		ConditionRules:    lowerKeys(payload.ConditionRules),
		TherapeuticGroups: payload.TherapeuticGroups,
		AgeRestrictions:   lowerKeys(payload.AgeRestrictions),
	}

	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("knowledge file %s failed validation: %w", l.path, err)
	}

	return base, nil
}

func lowerKeys[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for key, value := range in {
		out[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return out
}
