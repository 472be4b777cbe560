package geo

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/symptoguide-engine/internal/domain"
)

// StaticLocator reports a fixed position from configuration. The engine runs
// headless, so when a caller supplies no position of its own this is the
// device-geolocation stand-in.
type StaticLocator struct {
	pos    domain.Coordinates
	ok     bool
	logger *logrus.Logger
}

// NewStaticLocator builds a locator for the configured coordinates. A zero
// lat/lng pair is treated as "not configured" and surfaces
// ErrGeolocationUnavailable, matching a device without location capability.
func NewStaticLocator(cfg domain.HospitalsConfig, logger *logrus.Logger) *StaticLocator {
	if logger == nil {
		logger = logrus.New()
	}
	configured := cfg.StaticLat != 0 || cfg.StaticLng != 0
	return &StaticLocator{
		pos:    domain.Coordinates{Lat: cfg.StaticLat, Lng: cfg.StaticLng},
		ok:     configured,
		logger: logger,
	}
}

// Locate returns the configured position.
func (l *StaticLocator) Locate(ctx context.Context) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}
	if !l.ok {
		l.logger.Debug("no static position configured")
		return domain.Coordinates{}, domain.ErrGeolocationUnavailable
	}
	return l.pos, nil
}

// FixedLocator returns a locator that always reports the given position.
// Request handlers use it to wrap coordinates supplied by the caller.
func FixedLocator(pos domain.Coordinates) domain.Geolocator {
	return fixedLocator(pos)
}

type fixedLocator domain.Coordinates

func (l fixedLocator) Locate(ctx context.Context) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}
	return domain.Coordinates(l), nil
}

// DeniedLocator always reports ErrPermissionDenied. Handlers use it when the
// caller explicitly declined to share a position.
func DeniedLocator() domain.Geolocator {
	return deniedLocator{}
}

type deniedLocator struct{}

func (deniedLocator) Locate(ctx context.Context) (domain.Coordinates, error) {
	return domain.Coordinates{}, domain.ErrPermissionDenied
}
