// Package hospitals matches nearby healthcare facilities to the user's
// recommended department and keeps a map renderer in sync with the filtered
// list.
package hospitals

import (
	"strings"

	"github.com/symptoguide-engine/internal/domain"
)

// Filters is the user-adjustable view over a fetched hospital page. The
// department drives the fetch; search and the emergency toggle are applied
// locally on top of it.
type Filters struct {
	Department    string `json:"department"`
	Search        string `json:"search"`
	EmergencyOnly bool   `json:"emergency_only"`
}

// Apply filters a fetched page. Department filtering is skipped entirely when
// the source reported fallbackUsed, since those hospitals are general
// proximity results with no department guarantee. Search and the emergency
// toggle always apply, combined by AND.
func Apply(page *domain.HospitalsPage, f Filters) []domain.HospitalRecord {
	out := make([]domain.HospitalRecord, 0, len(page.Hospitals))
	for _, h := range page.Hospitals {
		if !page.FallbackUsed && !matchesDepartment(h, f.Department) {
			continue
		}
		if f.EmergencyOnly && !h.Emergency {
			continue
		}
		if !matchesSearch(h, f.Search) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// matchesDepartment decides whether a hospital serves a department. Primary
// Care accepts everything. Emergency accepts the emergency flag or an
// "emergency" specialty. Any other department matches by case-insensitive
// specialty substring, and a hospital listing no specialties at all passes as
// unknown general capability rather than being excluded.
func matchesDepartment(h domain.HospitalRecord, department string) bool {
	department = strings.TrimSpace(department)
	if department == "" || strings.EqualFold(department, "Primary Care") {
		return true
	}
	if strings.EqualFold(department, "Emergency") {
		return h.Emergency || h.HasSpecialty("emergency")
	}
	if len(h.Specialties) == 0 {
		return true
	}
	return h.HasSpecialty(department)
}

func matchesSearch(h domain.HospitalRecord, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(h.Name), search) ||
		strings.Contains(strings.ToLower(h.Address), search)
}
