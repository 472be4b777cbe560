package geo

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptoguide-engine/internal/domain"
)

func TestDistanceKm(t *testing.T) {
	delhi := domain.Coordinates{Lat: 28.6139, Lng: 77.2090}
	mumbai := domain.Coordinates{Lat: 19.0760, Lng: 72.8777}

	d := DistanceKm(delhi, mumbai)
	assert.InDelta(t, 1150, d, 20, "Delhi to Mumbai is roughly 1150 km")

	assert.Zero(t, DistanceKm(delhi, delhi))
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		km   float64
		want string
	}{
		{0.85, "850 m"},
		{0.05, "50 m"},
		{0.9996, "1000 m"},
		{1.0, "1.0 km"},
		{2.34, "2.3 km"},
		{12.07, "12.1 km"},
		{-1, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDistance(tt.km), "km=%v", tt.km)
	}
}

func TestDistanceLabel_NoCoordinates(t *testing.T) {
	user := domain.Coordinates{Lat: 28.6, Lng: 77.2}
	assert.Empty(t, DistanceLabel(user, domain.HospitalRecord{Name: "Unknown"}))
}

func TestStaticLocator(t *testing.T) {
	logger := logrus.New()

	t.Run("configured position", func(t *testing.T) {
		loc := NewStaticLocator(domain.HospitalsConfig{StaticLat: 28.6, StaticLng: 77.2}, logger)
		pos, err := loc.Locate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.Coordinates{Lat: 28.6, Lng: 77.2}, pos)
	})

	t.Run("unconfigured surfaces unavailable", func(t *testing.T) {
		loc := NewStaticLocator(domain.HospitalsConfig{}, logger)
		_, err := loc.Locate(context.Background())
		assert.ErrorIs(t, err, domain.ErrGeolocationUnavailable)
	})

	t.Run("cancelled context", func(t *testing.T) {
		loc := NewStaticLocator(domain.HospitalsConfig{StaticLat: 1}, logger)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := loc.Locate(ctx)
		assert.Error(t, err)
	})
}

func TestFixedAndDeniedLocators(t *testing.T) {
	pos, err := FixedLocator(domain.Coordinates{Lat: 1, Lng: 2}).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lng: 2}, pos)

	_, err = DeniedLocator().Locate(context.Background())
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}
