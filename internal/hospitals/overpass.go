package hospitals

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	overpass "github.com/serjvanilla/go-overpass"
	"github.com/sirupsen/logrus"

	"github.com/symptoguide-engine/internal/domain"
	"github.com/symptoguide-engine/internal/geo"
)

// OverpassSource queries OpenStreetMap via the Overpass API for healthcare
// amenities around a point. It is the degraded hospital provider used when
// the backend's hospital endpoint is unreachable; its pages always report
// FallbackUsed because OSM tagging carries no department guarantee.
type OverpassSource struct {
	client overpass.Client
	radius int
	logger *logrus.Logger
}

// NewOverpassSource builds a source for the given endpoint and search radius
// in meters.
func NewOverpassSource(cfg domain.HospitalsConfig, logger *logrus.Logger) *OverpassSource {
	if logger == nil {
		logger = logrus.New()
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return &OverpassSource{
		client: overpass.NewWithSettings(cfg.OverpassEndpoint, 1, httpClient),
		radius: cfg.RadiusMeters,
		logger: logger,
	}
}

// NearbyHospitals queries hospitals and clinics around the position. The
// department parameter is accepted for interface parity but not pushed into
// the query; OSM speciality tags are too sparse to filter server-side.
func (s *OverpassSource) NearbyHospitals(ctx context.Context, pos domain.Coordinates, department string) (*domain.HospitalsPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		[out:json];
		(
			node["amenity"~"hospital|clinic|doctors"](around:%d,%f,%f);
			way["amenity"~"hospital|clinic|doctors"](around:%d,%f,%f);
		);
		out body;
		>;
		out skel qt;
	`, s.radius, pos.Lat, pos.Lng, s.radius, pos.Lat, pos.Lng)

	result, err := s.client.Query(query)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	hospitals := convertResult(&result, pos)
	s.logger.WithFields(logrus.Fields{
		"count":  len(hospitals),
		"radius": s.radius,
	}).Debug("overpass hospital lookup completed")

	return &domain.HospitalsPage{Hospitals: hospitals, FallbackUsed: true}, nil
}

func convertResult(result *overpass.Result, user domain.Coordinates) []domain.HospitalRecord {
	var records []domain.HospitalRecord

	for _, node := range result.Nodes {
		if node == nil || node.Tags["name"] == "" {
			continue
		}
		records = append(records, recordFromTags(
			fmt.Sprintf("osm-node-%d", node.ID),
			node.Tags,
			domain.Coordinates{Lat: node.Lat, Lng: node.Lon},
			user,
		))
	}

	for _, way := range result.Ways {
		if way == nil || way.Tags["name"] == "" || len(way.Nodes) == 0 {
			continue
		}
		var lat, lng float64
		for _, n := range way.Nodes {
			lat += n.Lat
			lng += n.Lon
		}
		lat /= float64(len(way.Nodes))
		lng /= float64(len(way.Nodes))
		records = append(records, recordFromTags(
			fmt.Sprintf("osm-way-%d", way.ID),
			way.Tags,
			domain.Coordinates{Lat: lat, Lng: lng},
			user,
		))
	}

	sort.Slice(records, func(i, j int) bool {
		di := geo.DistanceKm(user, *records[i].Coordinates)
		dj := geo.DistanceKm(user, *records[j].Coordinates)
		return di < dj
	})
	return records
}

func recordFromTags(id string, tags map[string]string, pos domain.Coordinates, user domain.Coordinates) domain.HospitalRecord {
	record := domain.HospitalRecord{
		ID:          id,
		Name:        tags["name"],
		Address:     osmAddress(tags),
		Coordinates: &pos,
		Emergency:   tags["emergency"] == "yes",
		Phone:       firstTag(tags, "phone", "contact:phone"),
		Specialties: osmSpecialties(tags),
		Rating:      defaultRating,
	}
	record.DistanceLabel = geo.DistanceLabel(user, record)
	return record
}

// defaultRating stands in for facilities with no rating data.
const defaultRating = 4.5

func osmAddress(tags map[string]string) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"addr:street", "addr:housenumber", "addr:city"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func osmSpecialties(tags map[string]string) []string {
	raw := tags["healthcare:speciality"]
	if raw == "" {
		return nil
	}
	var specialties []string
	for _, s := range strings.Split(raw, ";") {
		if s = strings.TrimSpace(s); s != "" {
			specialties = append(specialties, s)
		}
	}
	return specialties
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}
