package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatewise/server/internal/models"
)

var address = models.Address{Street: "1600 Pennsylvania Ave NW", City: "Washington", State: "DC", Zip: "20500"}

func TestGeocode_CachesResults(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		q := r.URL.Query()
		assert.Equal(t, "us", q.Get("countrycodes"))
		assert.Equal(t, "1600 Pennsylvania Ave NW", q.Get("street"))
		assert.Equal(t, "20500", q.Get("postalcode"))
		w.Write([]byte(`[{"lat":"38.8977","lon":"-77.0365"}]`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	g := NewGeocoder(nil, dir).WithEndpoint(srv.URL)

	loc, err := g.Geocode(context.Background(), address)
	require.NoError(t, err)
	require.NotNil(t, loc.Latitude)
	assert.InDelta(t, 38.8977, *loc.Latitude, 1e-6)
	assert.InDelta(t, -77.0365, *loc.Longitude, 1e-6)
	assert.Equal(t, "Washington", loc.City)

	_, err = g.Geocode(context.Background(), address)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// a fresh geocoder reads the cache file
	reloaded := NewGeocoder(nil, dir).WithEndpoint("http://127.0.0.1:1")
	loc, err = reloaded.Geocode(context.Background(), address)
	require.NoError(t, err)
	assert.InDelta(t, 38.8977, *loc.Latitude, 1e-6)
}

func TestGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewGeocoder(nil, "").WithEndpoint(srv.URL)
	_, err := g.Geocode(context.Background(), address)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGeocode_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeocoder(nil, "").WithEndpoint(srv.URL)
	_, err := g.Geocode(context.Background(), address)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestGeocode_CancelledContext(t *testing.T) {
	g := NewGeocoder(nil, "").WithEndpoint("http://127.0.0.1:1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Geocode(ctx, address)
	assert.Error(t, err)
}
