package route

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/cenkalti/backoff/v4"
)

var _ ports.RouteDistance = (*HTTPClient)(nil)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint64
	RetryDelay time.Duration
}

// HTTPClient asks a routing service for the road distance between two points:
//
//	GET {BaseURL}/v1/distance?from=lat,lon&to=lat,lon  ->  {"distance_km": 5.2}
//
// Every failure is reported as ports.ErrRouteUnavailable.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	retryDelay time.Duration
}

type distanceResponse struct {
	DistanceKm *float64 `json:"distance_km"`
}

func NewHTTPClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

func (c *HTTPClient) DistanceKm(ctx context.Context, pickup, dropoff kernel.Location) (float64, error) {
	endpoint, err := url.Parse(c.baseURL + "/v1/distance")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrRouteUnavailable, err)
	}
	q := endpoint.Query()
	q.Set("from", formatPoint(pickup))
	q.Set("to", formatPoint(dropoff))
	endpoint.RawQuery = q.Encode()

	b := backoff.NewExponentialBackOff()
	if c.retryDelay > 0 {
		b.InitialInterval = c.retryDelay
	}
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	var km float64
	err = backoff.Retry(func() error {
		var attemptErr error
		km, attemptErr = c.fetch(ctx, endpoint.String())
		return attemptErr
	}, policy)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ports.ErrRouteUnavailable, err)
	}
	return km, nil
}

func (c *HTTPClient) fetch(ctx context.Context, endpoint string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return 0, fmt.Errorf("routing service returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return 0, backoff.Permanent(fmt.Errorf("routing service returned %d", resp.StatusCode))
	}

	var body distanceResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, backoff.Permanent(fmt.Errorf("decode distance: %w", err))
	}
	if body.DistanceKm == nil {
		return 0, backoff.Permanent(fmt.Errorf("distance_km missing"))
	}
	km := *body.DistanceKm
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return 0, backoff.Permanent(fmt.Errorf("distance %v is not usable", km))
	}
	return km, nil
}

func formatPoint(l kernel.Location) string {
	return strconv.FormatFloat(l.Lat(), 'f', 6, 64) + "," + strconv.FormatFloat(l.Lon(), 'f', 6, 64)
}
