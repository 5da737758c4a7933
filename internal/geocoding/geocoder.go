package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"estatewise/server/internal/models"
)

const (
	DefaultEndpoint = "https://nominatim.openstreetmap.org/search"
	cacheFileName   = "geocode_cache.json"
)

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves US street addresses to coordinates through Nominatim's
// structured search. Hits are cached in memory and, when a cache directory
// is set, in a JSON file that survives restarts.
type Geocoder struct {
	logger    *logrus.Logger
	cachePath string
	endpoint  string
	mu        sync.RWMutex
	points    map[string]point
	client    *http.Client
	limiter   *rate.Limiter
}

func NewGeocoder(logger *logrus.Logger, cacheDir string) *Geocoder {
	if logger == nil {
		logger = logrus.New()
	}

	g := &Geocoder{
		logger:   logger,
		endpoint: DefaultEndpoint,
		points:   make(map[string]point),
		client:   &http.Client{Timeout: 10 * time.Second},
		// one request per second, Nominatim usage policy
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}

	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			logger.WithError(err).Warn("Could not create geocode cache directory")
		} else {
			g.cachePath = filepath.Join(cacheDir, cacheFileName)
			g.restore()
		}
	}

	return g
}

// WithEndpoint points the geocoder at a different search endpoint.
func (g *Geocoder) WithEndpoint(endpoint string) *Geocoder {
	g.endpoint = endpoint
	return g
}

func (g *Geocoder) restore() {
	data, err := os.ReadFile(g.cachePath)
	if os.IsNotExist(err) {
		return
	}
	if err == nil {
		err = json.Unmarshal(data, &g.points)
	}
	if err != nil {
		g.logger.WithError(err).WithField("path", g.cachePath).Warn("Ignoring unreadable geocode cache")
		g.points = make(map[string]point)
		return
	}
	g.logger.WithField("entries", len(g.points)).Info("Loaded geocode cache")
}

func (g *Geocoder) persist() {
	if g.cachePath == "" {
		return
	}

	g.mu.RLock()
	data, err := json.Marshal(g.points)
	g.mu.RUnlock()
	if err == nil {
		err = os.WriteFile(g.cachePath, data, 0644)
	}
	if err != nil {
		g.logger.WithError(err).Error("Failed to save geocode cache")
	}
}

func (g *Geocoder) lookup(key string) (point, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.points[key]
	return p, ok
}

// Geocode returns the location of address with coordinates filled in.
func (g *Geocoder) Geocode(ctx context.Context, address models.Address) (models.Location, error) {
	loc := address.Location()
	key := address.Normalized()
	fields := logrus.Fields{"address": address.String()}

	p, ok := g.lookup(key)
	if !ok {
		var err error
		if p, err = g.search(ctx, address); err != nil {
			return loc, err
		}

		g.mu.Lock()
		g.points[key] = p
		g.mu.Unlock()
		g.persist()

		fields["source"] = "nominatim"
	} else {
		fields["source"] = "cache"
	}

	fields["latitude"], fields["longitude"] = p.Lat, p.Lon
	g.logger.WithFields(fields).Debug("Geocoded address")

	loc.Latitude, loc.Longitude = &p.Lat, &p.Lon
	return loc, nil
}

func (g *Geocoder) search(ctx context.Context, address models.Address) (point, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return point{}, fmt.Errorf("rate limit wait: %w", err)
	}

	query := url.Values{
		"street":       {address.Street},
		"city":         {address.City},
		"state":        {address.State},
		"postalcode":   {address.Zip},
		"countrycodes": {"us"},
		"format":       {"json"},
		"limit":        {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return point{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "EstateWise Property Analyzer/1.0")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := g.client.Do(req)
	if err != nil {
		return point{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return point{}, fmt.Errorf("geocoding request failed with status %d", resp.StatusCode)
	}

	var hits []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return point{}, fmt.Errorf("failed to parse geocoding response: %w", err)
	}
	if len(hits) == 0 {
		return point{}, models.NotFoundError("no geocoding results for %s", address)
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return point{}, fmt.Errorf("invalid latitude %q: %w", hits[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return point{}, fmt.Errorf("invalid longitude %q: %w", hits[0].Lon, err)
	}
	return point{Lat: lat, Lon: lon}, nil
}
