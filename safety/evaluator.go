package safety

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mindhub/medsafety-api/interfaces"
	"github.com/mindhub/medsafety-api/knowledge"
	"github.com/mindhub/medsafety-api/logging"
)

// allergyRecommendation is fixed for every drug-allergy finding.
const allergyRecommendation = "CONTRAINDICADO - Usar alternativa"

// Evaluator runs the safety pipeline over a knowledge snapshot and the
// medication directory. It holds no mutable state between calls.
type Evaluator struct {
	store     interfaces.KnowledgeStore
	directory interfaces.MedicationDirectory
}

// NewEvaluator creates an evaluator with injected dependencies.
func NewEvaluator(store interfaces.KnowledgeStore, directory interfaces.MedicationDirectory) *Evaluator {
	return &Evaluator{
		store:     store,
		directory: directory,
	}
}

// Evaluate runs all checkers in order (drug-drug, allergy, condition,
// controlled/dosage, duplicate therapy, age) and aggregates the score. The
// only I/O is the controlled-substance lookup; its failure degrades the
// warnings, never the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Report, error) {
	base := e.store.GetBase()
	if base == nil {
		return nil, fmt.Errorf("no knowledge snapshot available")
	}

	findings := make([]Finding, 0)
	warnings := make([]Warning, 0)

	findings = append(findings, checkDrugPairs(base, req.Medications)...)
	findings = append(findings, checkAllergies(base, req.Medications, req.Allergies)...)
	findings = append(findings, checkConditions(base, req.Medications, req.Conditions)...)

	warnings = append(warnings, e.checkControlledAndDosage(ctx, req.Medications)...)
	warnings = append(warnings, checkDuplicateTherapy(base, req.Medications)...)

	if req.Age != nil {
		findings = append(findings, checkAges(base, req.Medications, *req.Age)...)
	}

	return &Report{
		ReportID:        uuid.NewString(),
		HasInteractions: len(findings) > 0,
		Interactions:    findings,
		Warnings:        warnings,
		SafetyScore:     computeScore(findings, warnings),
	}, nil
}

// checkDrugPairs examines every unordered medication pair against the
// interaction table, in both directions. No de-duplication is performed: a
// pair matching rules from both directions produces two findings.
func checkDrugPairs(base *knowledge.Base, medications []MedicationEntry) []Finding {
	var findings []Finding

	for i := 0; i < len(medications); i++ {
		for j := i + 1; j < len(medications); j++ {
			findings = append(findings, pairFindings(base, medications[i], medications[j])...)
			findings = append(findings, pairFindings(base, medications[j], medications[i])...)
		}
	}

	return findings
}

// pairFindings matches a as a table key and b as the rule counterpart.
func pairFindings(base *knowledge.Base, a, b MedicationEntry) []Finding {
	var findings []Finding

	for key, rules := range base.Interactions {
		if !nameMatches(a.Name, key) {
			continue
		}
		for _, rule := range rules {
			if !nameMatches(b.Name, rule.WithDrug) {
				continue
			}
			findings = append(findings, Finding{
				Type:                FindingDrugDrug,
				Severity:            rule.Severity,
				Description:         rule.Description,
				Recommendation:      rule.Recommendation,
				MedicationsInvolved: []string{a.Name, b.Name},
			})
		}
	}

	return findings
}

// checkAllergies matches declared allergies against the cross-reactivity
// table. Allergies absent from the table are silently skipped.
func checkAllergies(base *knowledge.Base, medications []MedicationEntry, allergies []string) []Finding {
	var findings []Finding

	for _, allergy := range allergies {
		rules := lookupRules(base.AllergyRules, allergy)
		for _, rule := range rules {
			for _, med := range medications {
				if !nameMatches(med.Name, rule.MedicationGroup) {
					continue
				}
				findings = append(findings, Finding{
					Type:                FindingDrugAllergy,
					Severity:            rule.Severity,
					Description:         rule.Description,
					Recommendation:      allergyRecommendation,
					MedicationsInvolved: []string{med.Name},
					Factor:              allergy,
				})
			}
		}
	}

	return findings
}

// checkConditions matches declared chronic conditions against the
// contraindication table. Unknown conditions are silently skipped.
func checkConditions(base *knowledge.Base, medications []MedicationEntry, conditions []string) []Finding {
	var findings []Finding

	for _, condition := range conditions {
		rules := lookupRules(base.ConditionRules, condition)
		for _, rule := range rules {
			for _, med := range medications {
				if !nameMatches(med.Name, rule.Medication) {
					continue
				}
				findings = append(findings, Finding{
					Type:                FindingDrugCondition,
					Severity:            rule.Severity,
					Description:         rule.Description,
					Recommendation:      rule.Recommendation,
					MedicationsInvolved: []string{med.Name},
					Factor:              condition,
				})
			}
		}
	}

	return findings
}

// checkControlledAndDosage resolves each medication against the directory for
// controlled-substance status and inspects the raw dosage string for the
// high-dose literals. A failed lookup is absorbed: it only costs the
// controlled warning for that medication.
func (e *Evaluator) checkControlledAndDosage(ctx context.Context, medications []MedicationEntry) []Warning {
	var warnings []Warning

	for _, med := range medications {
		if e.directory != nil && e.directory.Available() {
			ref, err := e.directory.Lookup(ctx, med.Name)
			if err != nil {
				logging.Warn("Medication directory lookup failed, skipping controlled check",
					"medication", med.Name, "error", err)
			} else if ref != nil && ref.IsControlled {
				message := fmt.Sprintf("%s es una sustancia controlada", med.Name)
				if ref.ControlledCategory != "" {
					message = fmt.Sprintf("%s (categoría %s)", message, ref.ControlledCategory)
				}
				message += ". Verificar receta especial"
				warnings = append(warnings, Warning{
					Type:       WarningControlledSubstance,
					Message:    message,
					Medication: med.Name,
				})
			}
		}

		if hasHighDose(med.Dosage) {
			warnings = append(warnings, Warning{
				Type:       WarningDosageAlert,
				Message:    fmt.Sprintf("Dosis alta detectada para %s: verificar dosis máxima diaria", med.Name),
				Medication: med.Name,
			})
		}
	}

	return warnings
}

// hasHighDose applies the textual high-dose heuristic: the literal substrings
// "1000mg" or "1g", case-insensitive. Not a unit-aware parser; spelled-out
// variants ("1.5g", "1,000mg", mcg) are out of scope.
func hasHighDose(dosage string) bool {
	if dosage == "" {
		return false
	}
	lower := strings.ToLower(dosage)
	return strings.Contains(lower, "1000mg") || strings.Contains(lower, "1g")
}

// checkDuplicateTherapy emits one warning per therapeutic group with more
// than one name-matching medication.
func checkDuplicateTherapy(base *knowledge.Base, medications []MedicationEntry) []Warning {
	var warnings []Warning

	for _, group := range base.TherapeuticGroups {
		var matched []string
		for _, med := range medications {
			for _, member := range group.Members {
				if nameMatches(med.Name, member) {
					matched = append(matched, med.Name)
					break
				}
			}
		}

		if len(matched) > 1 {
			joined := strings.Join(matched, ", ")
			warnings = append(warnings, Warning{
				Type:       WarningDuplicateTherapy,
				Message:    fmt.Sprintf("Posible terapia duplicada (%s): %s", group.Label, joined),
				Medication: joined,
			})
		}
	}

	return warnings
}

// checkAges applies the age restriction bounds to each matching medication.
// Severity is fixed at moderate and the factor carries the numeric age.
func checkAges(base *knowledge.Base, medications []MedicationEntry, age int) []Finding {
	var findings []Finding

	for _, med := range medications {
		for key, restriction := range base.AgeRestrictions {
			if !nameMatches(med.Name, key) {
				continue
			}

			below := restriction.MinAge > 0 && age < restriction.MinAge
			above := restriction.MaxAge > 0 && age > restriction.MaxAge
			if !below && !above {
				continue
			}

			findings = append(findings, Finding{
				Type:                FindingDrugAge,
				Severity:            knowledge.SeverityModerate,
				Description:         restriction.Warning,
				Recommendation:      "Revisar la indicación según la edad del paciente",
				MedicationsInvolved: []string{med.Name},
				Factor:              fmt.Sprintf("%d años", age),
			})
		}
	}

	return findings
}

// computeScore starts at 100 and subtracts a fixed penalty per finding
// severity (critical 30, high 20, moderate 10, low 5) plus a flat 3 per
// warning, clamped at 0. The additive model is intentionally uncalibrated;
// preserved for parity with the reference tables.
func computeScore(findings []Finding, warnings []Warning) int {
	score := 100

	for _, finding := range findings {
		switch finding.Severity {
		case knowledge.SeverityCritical:
			score -= 30
		case knowledge.SeverityHigh:
			score -= 20
		case knowledge.SeverityModerate:
			score -= 10
		case knowledge.SeverityLow:
			score -= 5
		}
	}

	score -= 3 * len(warnings)

	if score < 0 {
		score = 0
	}
	return score
}

// lookupRules finds the rule list for a free-text key, tolerating accent and
// case differences between the request and the table.
func lookupRules[V any](table map[string][]V, key string) []V {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if rules, ok := table[normalized]; ok {
		return rules
	}

	folded := Fold(normalized)
	for candidate, rules := range table {
		if Fold(candidate) == folded {
			return rules
		}
	}
	return nil
}
