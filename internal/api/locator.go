package api

import (
	"context"
	"sync"

	"github.com/symptoguide-engine/internal/domain"
)

// SwitchableLocator lets each hospitals refresh request choose where the
// position comes from: coordinates supplied by the caller, an explicit
// permission denial, or the configured default locator. The matcher keeps a
// single Geolocator for its lifetime, so the gateway swaps the delegate
// instead of the matcher.
type SwitchableLocator struct {
	mu       sync.Mutex
	delegate domain.Geolocator
}

// NewSwitchableLocator wraps the default locator.
func NewSwitchableLocator(fallback domain.Geolocator) *SwitchableLocator {
	return &SwitchableLocator{delegate: fallback}
}

func (l *SwitchableLocator) Locate(ctx context.Context) (domain.Coordinates, error) {
	l.mu.Lock()
	delegate := l.delegate
	l.mu.Unlock()
	return delegate.Locate(ctx)
}

func (l *SwitchableLocator) Use(delegate domain.Geolocator) {
	l.mu.Lock()
	l.delegate = delegate
	l.mu.Unlock()
}
