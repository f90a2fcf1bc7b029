// Package safety implements the medication safety evaluator: pairwise
// drug-drug interaction checking, allergy cross-reactivity, condition
// contraindications, controlled-substance and dosage flagging, duplicate
// therapy detection, age appropriateness and the aggregate safety score.
package safety

import "github.com/mindhub/medsafety-api/knowledge"

// MedicationEntry is one medication in an evaluation request. Identity is the
// free-text name; no canonical drug code is required.
type MedicationEntry struct {
	Name             string `json:"medication_name"`
	ActiveIngredient string `json:"active_ingredient,omitempty"`
	Dosage           string `json:"dosage,omitempty"`
	Frequency        string `json:"frequency,omitempty"`
}

// Request is one evaluation request. Allergies, conditions and age are
// optional; an absent field simply skips the corresponding checker.
type Request struct {
	Medications []MedicationEntry `json:"medications"`
	Allergies   []string          `json:"patient_allergies,omitempty"`
	Conditions  []string          `json:"patient_conditions,omitempty"`
	Age         *int              `json:"patient_age,omitempty"`
}

// FindingType classifies a detected clinically-relevant interaction.
type FindingType string

const (
	FindingDrugDrug      FindingType = "drug-drug"
	FindingDrugAllergy   FindingType = "drug-allergy"
	FindingDrugCondition FindingType = "drug-condition"
	FindingDrugAge       FindingType = "drug-age"
)

// WarningType classifies a softer advisory that does not claim a direct
// interaction.
type WarningType string

const (
	WarningControlledSubstance WarningType = "controlled-substance"
	WarningDuplicateTherapy    WarningType = "duplicate-therapy"
	WarningDosageAlert         WarningType = "dosage-alert"
	WarningAgeInappropriate    WarningType = "age-inappropriate"
)

// Finding is a detected interaction. Immutable once produced.
type Finding struct {
	Type                FindingType        `json:"type"`
	Severity            knowledge.Severity `json:"severity"`
	Description         string             `json:"description"`
	Recommendation      string             `json:"recommendation"`
	MedicationsInvolved []string           `json:"medications_involved"`
	Factor              string             `json:"factor,omitempty"`
}

// Warning is a softer advisory attached to a single medication (or, for
// duplicate therapy, the joined list of medications in the group).
type Warning struct {
	Type       WarningType `json:"type"`
	Message    string      `json:"message"`
	Medication string      `json:"medication"`
}

// Report is the result of one evaluation. HasInteractions always mirrors
// len(Interactions) > 0 and SafetyScore stays within [0, 100].
type Report struct {
	ReportID        string    `json:"report_id"`
	HasInteractions bool      `json:"has_interactions"`
	Interactions    []Finding `json:"interactions"`
	Warnings        []Warning `json:"warnings"`
	SafetyScore     int       `json:"safety_score"`
}
