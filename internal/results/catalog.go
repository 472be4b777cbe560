package results

import "strings"

// Icon is the UI glyph tag attached to concern areas and specialist cards.
// The engine only picks the tag; rendering is the UI's concern.
type Icon string

const (
	IconWind        Icon = "wind"
	IconHeart       Icon = "heart"
	IconBrain       Icon = "brain"
	IconThermometer Icon = "thermometer"
	IconEar         Icon = "ear"
	IconBone        Icon = "bone"
	IconUtensils    Icon = "utensils"
	IconDroplets    Icon = "droplets"
	IconStethoscope Icon = "stethoscope"
)

// iconRule maps a substring predicate to an icon. Rules are evaluated top to
// bottom and the first match wins, so tie-break order is fixed by the slice.
type iconRule struct {
	substrings []string
	icon       Icon
}

// symptomIconRules picks the category icon for a concern area.
var symptomIconRules = []iconRule{
	{[]string{"breath", "respiratory"}, IconWind},
	{[]string{"heart", "chest"}, IconHeart},
	{[]string{"head", "brain", "mental"}, IconBrain},
	{[]string{"fever", "temperature"}, IconThermometer},
	{[]string{"ear", "hearing"}, IconEar},
	{[]string{"bone", "joint", "muscle"}, IconBone},
	{[]string{"stomach", "digest", "nausea"}, IconUtensils},
	{[]string{"fluid", "swelling", "blood"}, IconDroplets},
}

// specialistIconRules picks the icon for a specialist card by its name.
var specialistIconRules = []iconRule{
	{[]string{"cardio", "heart"}, IconHeart},
	{[]string{"neuro", "brain"}, IconBrain},
	{[]string{"ent", "ear"}, IconEar},
	{[]string{"ortho", "bone"}, IconBone},
	{[]string{"respir", "lung"}, IconWind},
	{[]string{"gastro", "digest"}, IconUtensils},
}

// matchIcon evaluates the rules in order and returns the first match, or the
// stethoscope default.
func matchIcon(rules []iconRule, text string) Icon {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.icon
			}
		}
	}
	return IconStethoscope
}

// symptomCategory is one entry of the fixed catalog used when the backend
// supplies no per-symptom severity detail.
type symptomCategory struct {
	Name     string
	Icon     Icon
	Keywords []string
}

// categoryCatalog is ordered: when nothing matches the intake symptoms, the
// first three categories are the default concern areas.
var categoryCatalog = []symptomCategory{
	{Name: "General Condition", Icon: IconStethoscope, Keywords: []string{"fatigue", "weakness", "malaise", "tired"}},
	{Name: "Fever & Temperature", Icon: IconThermometer, Keywords: []string{"fever", "chills", "temperature", "sweat"}},
	{Name: "Head & Neurological", Icon: IconBrain, Keywords: []string{"headache", "dizziness", "migraine", "numbness", "seizure"}},
	{Name: "Respiratory", Icon: IconWind, Keywords: []string{"cough", "breath", "wheezing", "congestion"}},
	{Name: "Heart & Circulation", Icon: IconHeart, Keywords: []string{"chest", "palpitations", "heart"}},
	{Name: "Digestive", Icon: IconUtensils, Keywords: []string{"stomach", "nausea", "vomit", "diarrhea", "abdominal"}},
	{Name: "Muscles & Joints", Icon: IconBone, Keywords: []string{"joint", "muscle", "bone", "back"}},
}

// specialistEntry is one row of the static specialist list used when the
// backend recommends no specialist.
type specialistEntry struct {
	Name        string
	Department  string
	Description string
}

// specialistCatalog is ordered: the first four entries are the default cards
// when no recommended department overlaps.
var specialistCatalog = []specialistEntry{
	{Name: "General Physician", Department: "Primary Care", Description: "First point of contact for general health concerns."},
	{Name: "Cardiologist", Department: "Cardiology", Description: "Heart and circulatory system conditions."},
	{Name: "Neurologist", Department: "Neurology", Description: "Brain, nerve and nervous system disorders."},
	{Name: "Gastroenterologist", Department: "Gastroenterology", Description: "Digestive system and stomach conditions."},
	{Name: "Pulmonologist", Department: "Pulmonology", Description: "Lungs and respiratory tract conditions."},
	{Name: "Dermatologist", Department: "Dermatology", Description: "Skin, hair and nail conditions."},
	{Name: "Orthopedist", Department: "Orthopedics", Description: "Bones, joints and musculoskeletal injuries."},
	{Name: "ENT Specialist", Department: "ENT", Description: "Ear, nose and throat conditions."},
}

// defaultSpecialistCount is how many cards the fallback shows when no
// recommended department matches the catalog.
const defaultSpecialistCount = 4
