package geocode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaswatch/uas-sightings-etl/internal/domain"
	"github.com/uaswatch/uas-sightings-etl/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubGeocoder scripts the external service: fn decides the outcome of each
// call by 1-based call number.
type stubGeocoder struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) (Location, bool, error)
}

func (s *stubGeocoder) Geocode(_ context.Context, _ string) (Location, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.fn(s.calls)
}

func (s *stubGeocoder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubLocator struct{ code string }

func (s stubLocator) Nearest(_, _ float64) (string, bool) {
	return s.code, s.code != ""
}

type spyStore struct{ saves int }

func (s *spyStore) Save(_ *Cache) error {
	s.saves++
	return nil
}

func newTestResolver(g Geocoder, loc AirportLocator, store Store, retry RetryPolicy, clk clockwork.Clock) *Resolver {
	return NewResolver(
		g, loc, NewCache(nil), store,
		map[string]string{"WASHINGTON": "WA"},
		retry, clk,
		observability.NewMetricsForTesting(),
		discardLogger(),
	)
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	retry := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Second}

	t.Run("missing city or state resolves unknown without lookup", func(t *testing.T) {
		g := &stubGeocoder{fn: func(int) (Location, bool, error) { return Location{}, true, nil }}
		r := newTestResolver(g, stubLocator{code: "SEA"}, nil, retry, nil)

		assert.Equal(t, domain.Unknown, r.Resolve(ctx, "", "WA"))
		assert.Equal(t, domain.Unknown, r.Resolve(ctx, "Seattle", ""))
		assert.Zero(t, g.callCount())
		assert.Zero(t, r.Cache().Len(), "absent input must not poison the cache")
	})

	t.Run("successful lookup caches the nearest airport", func(t *testing.T) {
		g := &stubGeocoder{fn: func(int) (Location, bool, error) {
			return Location{Lat: 47.6, Lon: -122.33}, true, nil
		}}
		r := newTestResolver(g, stubLocator{code: "SEA"}, nil, retry, nil)

		assert.Equal(t, "SEA", r.Resolve(ctx, "Seattle", "Washington"))

		// State is normalized before keying, so the cache holds the postal form.
		v, ok := r.Cache().Get("Seattle, WA")
		require.True(t, ok)
		assert.Equal(t, "SEA", v)
	})

	t.Run("second resolve is served from cache", func(t *testing.T) {
		g := &stubGeocoder{fn: func(int) (Location, bool, error) {
			return Location{Lat: 47.6, Lon: -122.33}, true, nil
		}}
		r := newTestResolver(g, stubLocator{code: "SEA"}, nil, retry, nil)

		assert.Equal(t, "SEA", r.Resolve(ctx, "Seattle", "WA"))
		assert.Equal(t, "SEA", r.Resolve(ctx, "Seattle", "WA"))
		assert.Equal(t, 1, g.callCount())
	})

	t.Run("permanent miss is cached as unknown", func(t *testing.T) {
		g := &stubGeocoder{fn: func(int) (Location, bool, error) { return Location{}, false, nil }}
		r := newTestResolver(g, stubLocator{code: "SEA"}, nil, retry, nil)

		assert.Equal(t, domain.Unknown, r.Resolve(ctx, "Nowhere", "ZZ"))
		assert.Equal(t, domain.Unknown, r.Resolve(ctx, "Nowhere", "ZZ"))
		assert.Equal(t, 1, g.callCount(), "negative outcome must not re-invoke the service")
	})

	t.Run("empty airport index is a permanent miss", func(t *testing.T) {
		g := &stubGeocoder{fn: func(int) (Location, bool, error) {
			return Location{Lat: 47.6, Lon: -122.33}, true, nil
		}}
		r := newTestResolver(g, stubLocator{}, nil, retry, nil)

		assert.Equal(t, domain.Unknown, r.Resolve(ctx, "Seattle", "WA"))
	})

	t.Run("unrecognized state does not block persistence", func(t *testing.T) {
		// Territories like Puerto Rico have no entry in the abbreviation
		// table, so their keys violate the durable schema. They must stay
		// usable in memory without stopping valid entries reaching disk.
		g := &stubGeocoder{fn: func(int) (Location, bool, error) {
			return Location{Lat: 47.6, Lon: -122.33}, true, nil
		}}
		store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"), discardLogger())
		r := newTestResolver(g, stubLocator{code: "SEA"}, store, retry, nil)

		assert.Equal(t, "SEA", r.Resolve(ctx, "San Juan", "Puerto Rico"))
		assert.Equal(t, "SEA", r.Resolve(ctx, "Seattle", "Washington"))

		assert.Equal(t, map[string]string{"Seattle, WA": "SEA"}, store.Load().Entries())

		// The odd key is still cached for the rest of the run.
		assert.Equal(t, "SEA", r.Resolve(ctx, "San Juan", "Puerto Rico"))
		assert.Equal(t, 2, g.callCount())
	})

	t.Run("new entries are persisted promptly", func(t *testing.T) {
		g := &stubGeocoder{fn: func(int) (Location, bool, error) {
			return Location{Lat: 47.6, Lon: -122.33}, true, nil
		}}
		store := &spyStore{}
		r := newTestResolver(g, stubLocator{code: "SEA"}, store, retry, nil)

		r.Resolve(ctx, "Seattle", "WA")
		r.Resolve(ctx, "Tacoma", "WA")
		r.Resolve(ctx, "Seattle", "WA")
		assert.Equal(t, 2, store.saves, "one save per new entry, none for cache hits")
	})
}

func TestResolver_Retry(t *testing.T) {
	ctx := context.Background()
	retry := RetryPolicy{MaxAttempts: 2, BaseDelay: 30 * time.Second}

	t.Run("transient failure recovers on retry", func(t *testing.T) {
		g := &stubGeocoder{fn: func(call int) (Location, bool, error) {
			if call == 1 {
				return Location{}, false, errors.New("connection reset")
			}
			return Location{Lat: 47.6, Lon: -122.33}, true, nil
		}}
		fc := clockwork.NewFakeClock()
		r := newTestResolver(g, stubLocator{code: "SEA"}, nil, retry, fc)

		done := make(chan string, 1)
		go func() { done <- r.Resolve(ctx, "Seattle", "WA") }()

		require.NoError(t, fc.BlockUntilContext(ctx, 1))
		fc.Advance(30 * time.Second)

		assert.Equal(t, "SEA", <-done)
		assert.Equal(t, 2, g.callCount())
	})

	t.Run("exhausted retries cache geo timeout", func(t *testing.T) {
		g := &stubGeocoder{fn: func(int) (Location, bool, error) {
			return Location{}, false, errors.New("service unavailable")
		}}
		fc := clockwork.NewFakeClock()
		r := newTestResolver(g, stubLocator{code: "SEA"}, nil, retry, fc)

		done := make(chan string, 1)
		go func() { done <- r.Resolve(ctx, "Slowtown", "OH") }()

		// Delay grows linearly: 30s before the first retry, 60s before the second.
		require.NoError(t, fc.BlockUntilContext(ctx, 1))
		fc.Advance(30 * time.Second)
		require.NoError(t, fc.BlockUntilContext(ctx, 1))
		fc.Advance(60 * time.Second)

		assert.Equal(t, domain.GeoTimeout, <-done)
		assert.Equal(t, 3, g.callCount(), "one initial call plus two retries")

		// The sentinel is terminal: no further external calls for this key.
		assert.Equal(t, domain.GeoTimeout, r.Resolve(ctx, "Slowtown", "OH"))
		assert.Equal(t, 3, g.callCount())
	})
}
