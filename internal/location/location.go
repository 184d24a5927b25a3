// Package location resolves a best-effort position for clock transitions.
//
// A Locator may fail; a Provider never does. Callers that need a position
// use a Provider and treat nil as "no location".
package location

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/models"
)

// DefaultTimeout bounds a single lookup
const DefaultTimeout = 10 * time.Second

// ErrUnavailable is returned by a Locator that has no position to offer
var ErrUnavailable = errors.New("location unavailable")

var unavailableTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "sitecrew",
	Subsystem: "location",
	Name:      "unavailable_total",
	Help:      "Lookups that resolved without a position.",
})

// Locator looks up a position and may fail
type Locator interface {
	Locate(ctx context.Context) (*models.Location, error)
}

// LocatorFunc adapts a function to a Locator
type LocatorFunc func(ctx context.Context) (*models.Location, error)

func (f LocatorFunc) Locate(ctx context.Context) (*models.Location, error) {
	return f(ctx)
}

// Provider returns the current position, or nil when none is available.
// Implementations never block past their own timeout.
type Provider interface {
	CurrentLocation(ctx context.Context) *models.Location
}

// BestEffort turns a Locator into a Provider. Each lookup is bounded by
// timeout and every failure resolves to nil.
type BestEffort struct {
	locator Locator
	timeout time.Duration
	logger  *zap.Logger
}

// NewBestEffort creates a provider over locator. A non-positive timeout
// falls back to DefaultTimeout.
func NewBestEffort(locator Locator, timeout time.Duration, logger *zap.Logger) *BestEffort {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BestEffort{
		locator: locator,
		timeout: timeout,
		logger:  logger.Named("location"),
	}
}

// CurrentLocation implements Provider
func (p *BestEffort) CurrentLocation(ctx context.Context) *models.Location {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	loc, err := p.locator.Locate(ctx)
	if err == nil && loc != nil && valid(loc) {
		return loc
	}

	if err == nil {
		err = ErrUnavailable
	}
	unavailableTotal.Inc()
	p.logger.Debug("No location for transition", zap.Error(err))
	return nil
}

// Chain tries each locator in order and returns the first position found
func Chain(locators ...Locator) Locator {
	return LocatorFunc(func(ctx context.Context) (*models.Location, error) {
		var errs []error
		for _, l := range locators {
			loc, err := l.Locate(ctx)
			if err == nil && loc != nil {
				return loc, nil
			}
			if err != nil {
				errs = append(errs, err)
			}
			if ctx.Err() != nil {
				break
			}
		}
		return nil, errors.Join(append([]error{ErrUnavailable}, errs...)...)
	})
}

func valid(loc *models.Location) bool {
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lng >= -180 && loc.Lng <= 180
}
