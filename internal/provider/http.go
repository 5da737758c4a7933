package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"estatewise/server/internal/models"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// HTTPProvider reads property data from a JSON data gateway.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

type HTTPOption func(*HTTPProvider)

func WithAPIKey(key string) HTTPOption {
	return func(p *HTTPProvider) {
		p.apiKey = key
	}
}

func WithLogger(logger *logrus.Logger) HTTPOption {
	return func(p *HTTPProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRateLimit caps outgoing requests per second. Values below one disable
// the limit.
func WithRateLimit(requestsPerSecond int) HTTPOption {
	return func(p *HTTPProvider) {
		if requestsPerSecond < 1 {
			p.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

func WithTimeout(timeout time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		if timeout > 0 {
			p.httpClient.Timeout = timeout
		}
	}
}

func NewHTTPProvider(baseURL string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     logrus.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// APIError is a non-200 response from the gateway. Not-found and
// bad-request responses unwrap to the matching model errors.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data gateway error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return models.ErrValidation
	}
	return nil
}

func (p *HTTPProvider) FetchProperty(ctx context.Context, address models.Address) (*models.PropertyRecord, error) {
	var record models.PropertyRecord
	if err := p.get(ctx, "/properties", addressParams(address), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (p *HTTPProvider) FetchValuations(ctx context.Context, address models.Address) ([]models.ValuationEstimate, error) {
	var resp struct {
		Valuations []models.ValuationEstimate `json:"valuations"`
	}
	if err := p.get(ctx, "/valuations", addressParams(address), &resp); err != nil {
		return nil, err
	}
	return resp.Valuations, nil
}

func (p *HTTPProvider) FetchMarketStats(ctx context.Context, location models.Location) (*models.MarketStats, error) {
	params := url.Values{}
	params.Set("city", location.City)
	params.Set("state", location.State)
	params.Set("zip", location.Zip)

	var stats models.MarketStats
	if err := p.get(ctx, "/markets", params, &stats); err != nil {
		return nil, err
	}
	if stats.Location.City == "" {
		stats.Location = location
	}
	return &stats, nil
}

func (p *HTTPProvider) FetchComparables(ctx context.Context, address models.Address) ([]models.Comparable, error) {
	var resp struct {
		Comparables []models.Comparable `json:"comparables"`
	}
	if err := p.get(ctx, "/comparables", addressParams(address), &resp); err != nil {
		return nil, err
	}
	return resp.Comparables, nil
}

func addressParams(address models.Address) url.Values {
	params := url.Values{}
	params.Set("street", address.Street)
	params.Set("city", address.City)
	params.Set("state", address.State)
	params.Set("zip", address.Zip)
	return params
}

// get performs a rate-limited GET request and decodes the JSON body into result.
func (p *HTTPProvider) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", p.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	p.logger.WithField("url", p.baseURL+path).Debug("Data gateway request")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
