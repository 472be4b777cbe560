// Package results turns a session's assessment result, or its absence of
// detail, into the structured view model the results screen renders: an
// emergency verdict, ranked concern areas and specialist cards. Derivation is
// a pure function: identical inputs always produce identical view models.
package results

import (
	"sort"
	"strings"

	"github.com/symptoguide-engine/internal/domain"
)

// maxConcernAreas caps the concern list at the five highest-scored symptoms.
const maxConcernAreas = 5

// ConcernLevelHigh and friends label a concern area's severity band.
const (
	ConcernLevelHigh   = "High"
	ConcernLevelMedium = "Medium"
	ConcernLevelLow    = "Low"
)

// ConcernArea is one ranked symptom (or symptom category) on the results view.
type ConcernArea struct {
	Label string  `json:"label"`
	Score float64 `json:"score,omitempty"`
	Level string  `json:"level"`
	Icon  Icon    `json:"icon"`
}

// SpecialistCard is one recommended specialist on the results view.
type SpecialistCard struct {
	Name              string   `json:"name"`
	Icon              Icon     `json:"icon"`
	Description       string   `json:"description"`
	RelatedConditions []string `json:"related_conditions,omitempty"`
}

// ViewModel is everything the results screen needs, derived once from the
// assessment result and the raw intake.
type ViewModel struct {
	Kind         domain.ResultKind   `json:"kind"`
	Emergency    bool                `json:"emergency"`
	Disease      string              `json:"disease,omitempty"`
	Confidence   float64             `json:"confidence,omitempty"`
	ConcernLevel domain.ConcernLevel `json:"concern_level,omitempty"`
	Suggestions  []string            `json:"suggestions,omitempty"`
	Precautions  []string            `json:"precautions,omitempty"`
	ConcernAreas []ConcernArea       `json:"concern_areas"`
	Specialists  []SpecialistCard    `json:"specialists"`
}

// Derive builds the view model for a result and the intake it came from.
func Derive(result *domain.AssessmentResult, intake *domain.IntakeState) *ViewModel {
	vm := &ViewModel{
		Kind:      result.Kind,
		Emergency: deriveEmergency(result, intake),
	}

	switch result.Kind {
	case domain.ResultML:
		ml := result.ML
		vm.Disease = ml.Disease
		vm.Confidence = ml.Confidence
		vm.Precautions = ml.Recommendations.Precautions
		vm.ConcernAreas = deriveConcernAreas(ml.Severity.PerSymptomScore, intake)
		vm.Specialists = deriveMLSpecialists(ml)
	case domain.ResultFallback:
		fb := result.Fallback
		vm.ConcernLevel = fb.ConcernLevel
		vm.Suggestions = fb.Suggestions
		vm.ConcernAreas = deriveConcernAreas(nil, intake)
		vm.Specialists = deriveFallbackSpecialists(fb.RecommendedDepartments)
	}

	return vm
}

// deriveEmergency applies the OR-rule: any single emergency signal suffices.
func deriveEmergency(result *domain.AssessmentResult, intake *domain.IntakeState) bool {
	if result.Kind == domain.ResultML && result.ML.Severity.IsEmergency {
		return true
	}
	if result.Kind == domain.ResultFallback && result.Fallback.ConcernLevel == domain.ConcernHigh {
		return true
	}
	return intake.Severity == domain.SeveritySevere
}

// deriveConcernAreas ranks the five highest-scored symptoms when per-symptom
// detail exists; otherwise it matches the intake symptoms against the fixed
// category catalog.
func deriveConcernAreas(scores map[string]float64, intake *domain.IntakeState) []ConcernArea {
	if len(scores) > 0 {
		return scoredConcernAreas(scores, intake)
	}
	return categoryConcernAreas(intake)
}

// scoredConcernAreas sorts symptoms by score descending, breaking ties by the
// original intake insertion order (scored symptoms the user never entered,
// extracted by the backend from the description, rank after those they did).
func scoredConcernAreas(scores map[string]float64, intake *domain.IntakeState) []ConcernArea {
	ordered := make([]string, 0, len(scores))
	seen := make(map[string]bool, len(scores))

	for _, label := range intake.Symptoms.Labels() {
		if _, ok := scores[label]; ok && !seen[label] {
			ordered = append(ordered, label)
			seen[label] = true
		}
	}
	var extras []string
	for label := range scores {
		if !seen[label] {
			extras = append(extras, label)
		}
	}
	sort.Strings(extras)
	ordered = append(ordered, extras...)

	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i]] > scores[ordered[j]]
	})

	if len(ordered) > maxConcernAreas {
		ordered = ordered[:maxConcernAreas]
	}

	areas := make([]ConcernArea, 0, len(ordered))
	for _, label := range ordered {
		score := scores[label]
		areas = append(areas, ConcernArea{
			Label: label,
			Score: score,
			Level: scoreLevel(score),
			Icon:  matchIcon(symptomIconRules, label),
		})
	}
	return areas
}

// scoreLevel bands a per-symptom severity score.
func scoreLevel(score float64) string {
	switch {
	case score >= 6:
		return ConcernLevelHigh
	case score >= 4:
		return ConcernLevelMedium
	default:
		return ConcernLevelLow
	}
}

// categoryConcernAreas matches intake symptoms against the category catalog
// by keyword overlap, defaulting to the first three categories when nothing
// matches. The level comes from the self-reported severity, the only signal
// available without backend detail.
func categoryConcernAreas(intake *domain.IntakeState) []ConcernArea {
	level := severityLevel(intake.Severity)

	var areas []ConcernArea
	for _, cat := range categoryCatalog {
		if categoryMatches(cat, intake.Symptoms.Labels()) {
			areas = append(areas, ConcernArea{Label: cat.Name, Level: level, Icon: cat.Icon})
		}
	}
	if len(areas) == 0 {
		for _, cat := range categoryCatalog[:3] {
			areas = append(areas, ConcernArea{Label: cat.Name, Level: level, Icon: cat.Icon})
		}
	}
	return areas
}

func categoryMatches(cat symptomCategory, labels []string) bool {
	for _, label := range labels {
		lower := strings.ToLower(label)
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// severityLevel maps self-reported severity onto a concern band.
func severityLevel(severity domain.Severity) string {
	switch severity {
	case domain.SeveritySevere:
		return ConcernLevelHigh
	case domain.SeverityModerate:
		return ConcernLevelMedium
	default:
		return ConcernLevelLow
	}
}

// deriveMLSpecialists builds the single card for the recommended specialist,
// relating it to the primary disease and the first two alternatives. Absent a
// recommendation it degrades to the static catalog defaults.
func deriveMLSpecialists(ml *domain.MlResult) []SpecialistCard {
	name := ml.Recommendations.Specialist
	if name == "" {
		return deriveFallbackSpecialists(nil)
	}

	related := []string{ml.Disease}
	for i, alt := range ml.Alternatives {
		if i >= 2 {
			break
		}
		related = append(related, alt.Disease)
	}

	return []SpecialistCard{{
		Name:              name,
		Icon:              matchIcon(specialistIconRules, name),
		Description:       ml.Recommendations.Description,
		RelatedConditions: related,
	}}
}

// deriveFallbackSpecialists filters the static catalog by overlap with the
// recommended departments, defaulting to the fixed top entries when nothing
// overlaps.
func deriveFallbackSpecialists(departments []string) []SpecialistCard {
	var entries []specialistEntry
	for _, entry := range specialistCatalog {
		for _, dept := range departments {
			if strings.EqualFold(entry.Department, strings.TrimSpace(dept)) {
				entries = append(entries, entry)
				break
			}
		}
	}
	if len(entries) == 0 {
		entries = specialistCatalog[:defaultSpecialistCount]
	}

	cards := make([]SpecialistCard, 0, len(entries))
	for _, entry := range entries {
		cards = append(cards, SpecialistCard{
			Name:        entry.Name,
			Icon:        matchIcon(specialistIconRules, entry.Name),
			Description: entry.Description,
		})
	}
	return cards
}

// PreferredDepartment returns the department the hospitals view should
// pre-filter by: the ML specialist's field mapped through the icon-style
// predicate list, or the first recommended department of a fallback result.
func PreferredDepartment(result *domain.AssessmentResult) string {
	switch result.Kind {
	case domain.ResultML:
		return specialistDepartment(result.ML.Recommendations.Specialist)
	case domain.ResultFallback:
		if len(result.Fallback.RecommendedDepartments) > 0 {
			return result.Fallback.RecommendedDepartments[0]
		}
	}
	return "Primary Care"
}

// specialistDepartmentRules maps specialist names to hospital departments,
// first match wins.
var specialistDepartmentRules = []struct {
	substrings []string
	department string
}{
	{[]string{"cardio", "heart"}, "Cardiology"},
	{[]string{"neuro", "brain"}, "Neurology"},
	{[]string{"gastro", "digest"}, "Gastroenterology"},
	{[]string{"pulmo", "respir", "lung"}, "Pulmonology"},
	{[]string{"derma", "skin"}, "Dermatology"},
	{[]string{"ortho", "bone"}, "Orthopedics"},
	{[]string{"ent", "ear"}, "ENT"},
	{[]string{"emergency"}, "Emergency"},
}

func specialistDepartment(specialist string) string {
	if specialist == "" {
		return "Primary Care"
	}
	lower := strings.ToLower(specialist)
	for _, rule := range specialistDepartmentRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.department
			}
		}
	}
	return "Primary Care"
}
