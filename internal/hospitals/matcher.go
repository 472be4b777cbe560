package hospitals

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/symptoguide-engine/internal/domain"
)

// Matcher runs the locate, fetch, filter, render pipeline for nearby
// hospitals. Each Refresh is one attempt with a monotonic id; when a newer
// attempt starts while an older one is still in flight, the older attempt's
// completion is discarded so the latest attempt is always authoritative.
type Matcher struct {
	locator  domain.Geolocator
	primary  domain.HospitalSource
	degraded domain.HospitalSource
	renderer domain.MapRenderer
	logger   *logrus.Logger

	mu      sync.Mutex
	attempt uint64
	phase   domain.MatchPhase
	message string
	user    domain.Coordinates
	located bool
	page    *domain.HospitalsPage
	filters Filters
}

// Snapshot is the matcher's externally visible state at one point in time.
type Snapshot struct {
	Phase     domain.MatchPhase       `json:"phase"`
	Message   string                  `json:"message,omitempty"`
	Filters   Filters                 `json:"filters"`
	Hospitals []domain.HospitalRecord `json:"hospitals"`
}

// NewMatcher builds a matcher. The degraded source and the renderer may be
// nil; a nil degraded source disables the OSM fallback and a nil renderer
// disables map synchronization.
func NewMatcher(locator domain.Geolocator, primary domain.HospitalSource, degraded domain.HospitalSource, renderer domain.MapRenderer, logger *logrus.Logger) *Matcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Matcher{
		locator:  locator,
		primary:  primary,
		degraded: degraded,
		renderer: renderer,
		logger:   logger,
		phase:    domain.PhaseIdle,
	}
}

// SetDepartment records a new department selection and starts a fresh
// attempt; a changed department always refetches.
func (m *Matcher) SetDepartment(ctx context.Context, department string) {
	m.mu.Lock()
	m.filters.Department = department
	m.mu.Unlock()
	m.Refresh(ctx)
}

// Refresh runs one full attempt: locate the user, fetch hospitals for the
// current department, then publish the result. Errors are terminal for the
// attempt only; the matcher stays usable and a later Refresh starts over.
func (m *Matcher) Refresh(ctx context.Context) {
	m.mu.Lock()
	m.attempt++
	id := m.attempt
	department := m.filters.Department
	m.phase = domain.PhaseLocatingUser
	m.message = ""
	m.mu.Unlock()

	pos, err := m.locator.Locate(ctx)
	if err != nil {
		m.fail(id, err, locateMessage(err))
		return
	}

	if !m.advance(id, domain.PhaseFetching) {
		return
	}

	page, err := m.primary.NearbyHospitals(ctx, pos, department)
	if err != nil && m.degraded != nil {
		m.logger.WithError(err).Warn("hospital endpoint failed, trying map data fallback")
		page, err = m.degraded.NearbyHospitals(ctx, pos, department)
	}
	if err != nil {
		m.fail(id, err, "unable to load nearby hospitals right now")
		return
	}

	m.commit(id, pos, page)
}

// SetSearch updates the free-text filter and redraws the map. No refetch.
func (m *Matcher) SetSearch(search string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters.Search = search
	m.syncMapLocked()
}

// SetEmergencyOnly toggles the emergency-only filter and redraws the map.
func (m *Matcher) SetEmergencyOnly(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters.EmergencyOnly = on
	m.syncMapLocked()
}

// ClearFilters resets search and the emergency toggle. The department
// selection survives; clearing it would change which hospitals were fetched,
// not just which are shown.
func (m *Matcher) ClearFilters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters.Search = ""
	m.filters.EmergencyOnly = false
	m.syncMapLocked()
}

// FocusHospital recenters the map on one hospital from the current list.
// It never refetches. Unknown ids and hospitals without coordinates report
// ErrNotFound.
func (m *Matcher) FocusHospital(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page == nil {
		return domain.ErrNotFound
	}
	for _, h := range m.page.Hospitals {
		if h.ID == id {
			if h.Coordinates == nil {
				return domain.ErrNotFound
			}
			if m.renderer != nil {
				m.renderer.Center(*h.Coordinates)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

// Snapshot returns the current phase, filters and filtered hospital list.
func (m *Matcher) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Phase:     m.phase,
		Message:   m.message,
		Filters:   m.filters,
		Hospitals: m.filteredLocked(),
	}
}

// Hospitals returns the filtered list, or ErrNoResults when the filters leave
// nothing to show. The caller distinguishes empty-after-filtering from a
// failed attempt via the snapshot phase.
func (m *Matcher) Hospitals() ([]domain.HospitalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != domain.PhaseReady {
		return nil, domain.ErrNoResults
	}
	list := m.filteredLocked()
	if len(list) == 0 {
		return nil, domain.ErrNoResults
	}
	return list, nil
}

// advance moves a live attempt to the next phase, reporting false when the
// attempt has been superseded.
func (m *Matcher) advance(id uint64, phase domain.MatchPhase) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != m.attempt {
		m.logger.WithField("attempt", id).Debug("discarding superseded attempt")
		return false
	}
	m.phase = phase
	return true
}

func (m *Matcher) fail(id uint64, err error, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != m.attempt {
		return
	}
	m.logger.WithError(err).WithField("attempt", id).Warn("hospital matching attempt failed")
	m.phase = domain.PhaseError
	m.message = message
}

func (m *Matcher) commit(id uint64, pos domain.Coordinates, page *domain.HospitalsPage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != m.attempt {
		m.logger.WithField("attempt", id).Debug("discarding superseded attempt result")
		return
	}
	m.user = pos
	m.located = true
	m.page = page
	m.phase = domain.PhaseReady
	m.message = ""
	m.syncMapLocked()
}

func (m *Matcher) filteredLocked() []domain.HospitalRecord {
	if m.page == nil {
		return nil
	}
	return Apply(m.page, m.filters)
}

// syncMapLocked redraws the map from scratch: recenter on the user, redraw
// the user marker, then one marker per filtered hospital with coordinates.
func (m *Matcher) syncMapLocked() {
	if m.renderer == nil || !m.located {
		return
	}
	m.renderer.Center(m.user)
	m.renderer.SetUserMarker(m.user)
	m.renderer.ClearHospitalMarkers()
	for _, h := range m.filteredLocked() {
		if h.Coordinates != nil {
			m.renderer.AddHospitalMarker(h)
		}
	}
}

func locateMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrGeolocationUnavailable):
		return "location is not supported on this device"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "location permission was denied"
	default:
		return "unable to determine your location"
	}
}
