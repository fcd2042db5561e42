package geocode

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/uaswatch/uas-sightings-etl/internal/domain"
	"github.com/uaswatch/uas-sightings-etl/internal/observability"
)

// Location is a WGS-84 coordinate pair returned by a geocoding provider.
type Location struct {
	Lat float64
	Lon float64
}

// Geocoder is the external lookup service: free-text place description in,
// coordinates out. found=false is a permanent miss (cached as UNKNOWN);
// a non-nil error is a transient service failure and triggers the retry
// policy.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (loc Location, found bool, err error)
}

// AirportLocator selects the nearest candidate airport for a position.
// Implemented by airports.Index.
type AirportLocator interface {
	Nearest(lat, lon float64) (code string, ok bool)
}

// Store persists the cache. Implemented by FileStore.
type Store interface {
	Save(c *Cache) error
}

// RetryPolicy bounds the retry loop after a transient failure: up to
// MaxAttempts retries with a linearly increasing delay (BaseDelay × attempt
// number) before each one.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Resolver maps (city, state) to an airport code. It owns the cache for the
// duration of a run and persists every new entry promptly, so a crash
// mid-run loses at most the most recent resolutions. Resolve never returns
// an error: every failure mode degrades to a sentinel value.
type Resolver struct {
	geocoder    Geocoder
	airports    AirportLocator
	cache       *Cache
	store       Store
	stateAbbrev map[string]string
	retry       RetryPolicy
	clock       clockwork.Clock
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewResolver wires a resolver. store may be nil to disable persistence
// (tests); clock may be nil for real time.
func NewResolver(
	geocoder Geocoder,
	airports AirportLocator,
	cache *Cache,
	store Store,
	stateAbbrev map[string]string,
	retry RetryPolicy,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Resolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Resolver{
		geocoder:    geocoder,
		airports:    airports,
		cache:       cache,
		store:       store,
		stateAbbrev: stateAbbrev,
		retry:       retry,
		clock:       clock,
		metrics:     metrics,
		logger:      logger,
	}
}

// Cache exposes the resolver's cache for the end-of-run save.
func (r *Resolver) Cache() *Cache { return r.cache }

// Resolve maps a city/state pair to an airport code, a cached sentinel, or
// a fresh lookup outcome. Records with no city or state resolve to UNKNOWN
// without touching the cache or the external service.
func (r *Resolver) Resolve(ctx context.Context, city, state string) string {
	if city == "" || state == "" {
		return domain.Unknown
	}

	state = domain.NormalizeState(state, r.stateAbbrev)
	key := Key(city, state)

	if value, ok := r.cache.Get(key); ok {
		r.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return value
	}
	r.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	value := r.lookup(ctx, key)
	r.cache.Put(key, value)
	r.persist()
	return value
}

// lookup performs the external call with the bounded retry loop and returns
// the terminal value for the key.
func (r *Resolver) lookup(ctx context.Context, key string) string {
	code, found, err := r.geocodeOnce(ctx, key)
	if err == nil {
		return r.outcome(key, code, found)
	}

	for attempt := 1; attempt <= r.retry.MaxAttempts; attempt++ {
		r.clock.Sleep(r.retry.BaseDelay * time.Duration(attempt))
		r.metrics.GeocodeRetries.Inc()

		code, found, err = r.geocodeOnce(ctx, key)
		if err == nil {
			return r.outcome(key, code, found)
		}
		r.logger.Warn("geocode attempt failed",
			"location", key,
			"attempt", attempt,
			"max_attempts", r.retry.MaxAttempts,
			"error", err,
		)
	}

	r.metrics.GeocodeLookups.WithLabelValues("timeout").Inc()
	r.logger.Warn("geocode retries exhausted", "location", key)
	return domain.GeoTimeout
}

// geocodeOnce queries the service with the country qualifier and picks the
// nearest airport for any returned position.
func (r *Resolver) geocodeOnce(ctx context.Context, key string) (code string, found bool, err error) {
	start := r.clock.Now()
	loc, found, err := r.geocoder.Geocode(ctx, key+", USA")
	r.metrics.GeocodeAPIDuration.Observe(r.clock.Since(start).Seconds())
	if err != nil || !found {
		return "", found, err
	}

	nearest, ok := r.airports.Nearest(loc.Lat, loc.Lon)
	if !ok {
		return "", false, nil
	}
	return nearest, true, nil
}

func (r *Resolver) outcome(key, code string, found bool) string {
	if !found {
		r.metrics.GeocodeLookups.WithLabelValues("unknown").Inc()
		return domain.Unknown
	}
	r.metrics.GeocodeLookups.WithLabelValues("resolved").Inc()
	r.logger.Debug("geocoded location", "location", key, "airport", code)
	return code
}

// persist writes the cache through the store after every new entry. Save
// failures are logged, not propagated: the in-memory cache still serves the
// rest of the run.
func (r *Resolver) persist() {
	if r.store == nil {
		return
	}
	if err := r.store.Save(r.cache); err != nil {
		r.logger.Error("cache save failed", "error", err)
	}
}
