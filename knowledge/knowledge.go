// Package knowledge holds the static rule tables used by the safety evaluator:
// drug-drug interactions, allergy cross-reactivity, condition contraindications,
// therapeutic groups for duplicate-therapy detection and age restrictions.
// A Base is immutable once built; updates replace the whole snapshot.
package knowledge

import (
	"fmt"
	"strings"
	"time"
)

// Severity levels for interaction findings, ordered from least to most severe.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ValidSeverity reports whether s is one of the known severity levels.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// DrugInteraction describes a known interaction between the keying drug and WithDrug.
type DrugInteraction struct {
	WithDrug       string   `json:"with_drug"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
}

// AllergyRule maps a declared allergy to a medication group that cross-reacts with it.
type AllergyRule struct {
	MedicationGroup string   `json:"medication_group"`
	Severity        Severity `json:"severity"`
	Description     string   `json:"description"`
}

// ConditionRule maps a chronic condition to a contraindicated medication.
type ConditionRule struct {
	Medication     string   `json:"medication"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
}

// TherapeuticGroup is a named class of medications used for duplicate-therapy detection.
type TherapeuticGroup struct {
	Label   string   `json:"label"`
	Members []string `json:"members"`
}

// AgeRestriction bounds the patient age for a medication. A zero bound means unset.
type AgeRestriction struct {
	MinAge  int    `json:"min_age,omitempty"`
	MaxAge  int    `json:"max_age,omitempty"`
	Warning string `json:"warning"`
}

// MedicationReference is a row from the medication directory (reference database).
type MedicationReference struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	ActiveIngredient   string `json:"active_ingredient,omitempty"`
	IsControlled       bool   `json:"is_controlled"`
	ControlledCategory string `json:"controlled_category,omitempty"`
}

// Base is one immutable snapshot of all rule tables. Map keys are lowercase
// drug, allergy and condition names.
type Base struct {
	Version           string
	LoadedAt          time.Time
	Interactions      map[string][]DrugInteraction
	AllergyRules      map[string][]AllergyRule
	ConditionRules    map[string][]ConditionRule
	TherapeuticGroups []TherapeuticGroup
	AgeRestrictions   map[string]AgeRestriction
}

// RuleCounts summarizes the size of each table, used by the health and
// knowledge endpoints.
type RuleCounts struct {
	Interactions      int `json:"interactions"`
	AllergyRules      int `json:"allergy_rules"`
	ConditionRules    int `json:"condition_rules"`
	TherapeuticGroups int `json:"therapeutic_groups"`
	AgeRestrictions   int `json:"age_restrictions"`
}

// Counts returns the number of rules in each table. Interaction, allergy and
// condition counts are rule totals, not key totals.
func (b *Base) Counts() RuleCounts {
	c := RuleCounts{
		TherapeuticGroups: len(b.TherapeuticGroups),
		AgeRestrictions:   len(b.AgeRestrictions),
	}
	for _, rules := range b.Interactions {
		c.Interactions += len(rules)
	}
	for _, rules := range b.AllergyRules {
		c.AllergyRules += len(rules)
	}
	for _, rules := range b.ConditionRules {
		c.ConditionRules += len(rules)
	}
	return c
}

// Validate checks table consistency: non-empty keys, known severities and
// non-empty group members. A Base that fails validation must not be installed.
func (b *Base) Validate() error {
	if b == nil {
		return fmt.Errorf("knowledge base is nil")
	}

	for drug, rules := range b.Interactions {
		if strings.TrimSpace(drug) == "" {
			return fmt.Errorf("interaction table has an empty drug key")
		}
		for _, rule := range rules {
			if strings.TrimSpace(rule.WithDrug) == "" {
				return fmt.Errorf("interaction rule for %q has an empty counterpart", drug)
			}
			if !ValidSeverity(rule.Severity) {
				return fmt.Errorf("interaction rule %q/%q has unknown severity %q", drug, rule.WithDrug, rule.Severity)
			}
		}
	}

	for allergy, rules := range b.AllergyRules {
		if strings.TrimSpace(allergy) == "" {
			return fmt.Errorf("allergy table has an empty allergy key")
		}
		for _, rule := range rules {
			if strings.TrimSpace(rule.MedicationGroup) == "" {
				return fmt.Errorf("allergy rule for %q has an empty medication group", allergy)
			}
			if rule.Severity != SeverityHigh && rule.Severity != SeverityCritical {
				return fmt.Errorf("allergy rule %q/%q must be high or critical, got %q", allergy, rule.MedicationGroup, rule.Severity)
			}
		}
	}

	for condition, rules := range b.ConditionRules {
		if strings.TrimSpace(condition) == "" {
			return fmt.Errorf("condition table has an empty condition key")
		}
		for _, rule := range rules {
			if strings.TrimSpace(rule.Medication) == "" {
				return fmt.Errorf("condition rule for %q has an empty medication", condition)
			}
			if rule.Severity != SeverityModerate && rule.Severity != SeverityHigh {
				return fmt.Errorf("condition rule %q/%q must be moderate or high, got %q", condition, rule.Medication, rule.Severity)
			}
		}
	}

	for i, group := range b.TherapeuticGroups {
		if strings.TrimSpace(group.Label) == "" {
			return fmt.Errorf("therapeutic group %d has an empty label", i)
		}
		if len(group.Members) == 0 {
			return fmt.Errorf("therapeutic group %q has no members", group.Label)
		}
	}

	for med, restriction := range b.AgeRestrictions {
		if strings.TrimSpace(med) == "" {
			return fmt.Errorf("age restriction table has an empty medication key")
		}
		if restriction.MinAge == 0 && restriction.MaxAge == 0 {
			return fmt.Errorf("age restriction for %q has no bounds", med)
		}
		if restriction.MinAge < 0 || restriction.MaxAge < 0 {
			return fmt.Errorf("age restriction for %q has a negative bound", med)
		}
		if restriction.MinAge > 0 && restriction.MaxAge > 0 && restriction.MinAge > restriction.MaxAge {
			return fmt.Errorf("age restriction for %q has min_age above max_age", med)
		}
	}

	return nil
}
