package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/infrastructure/config"
)

// NominatimClient resolves free-form store addresses to coordinates
// through a Nominatim-compatible search endpoint.
type NominatimClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
}

// NewNominatimClient creates a geocoding client from config.
// If clock is nil, uses RealClock for production.
func NewNominatimClient(cfg *config.GeocodeConfig, clock shared.Clock) *NominatimClient {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &NominatimClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit.Requests), cfg.RateLimit.Burst),
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		maxRetries:  cfg.Retry.MaxAttempts,
		backoffBase: cfg.Retry.BackoffBase,
		clock:       clock,
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address string to a coordinate. Errors when the
// service has no match for the address.
func (c *NominatimClient) Geocode(ctx context.Context, address string) (shared.Coordinate, error) {
	if address == "" {
		return shared.Coordinate{}, shared.NewValidationError("address", "must not be empty")
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	var results []searchResult
	if err := c.request(ctx, "/search?"+query.Encode(), &results); err != nil {
		return shared.Coordinate{}, fmt.Errorf("failed to geocode %q: %w", address, err)
	}

	if len(results) == 0 {
		return shared.Coordinate{}, fmt.Errorf("no geocoding result for address %q", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return shared.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return shared.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	return shared.Coordinate{Lat: lat, Lng: lng}, nil
}

// request makes a GET request with rate limiting and exponential backoff retries
func (c *NominatimClient) request(ctx context.Context, path string, result interface{}) error {
	reqURL := c.baseURL + path

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network error - retryable
			lastErr = fmt.Errorf("network error: %w", err)
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("failed to read response: %w", readErr)
		}

		// 429 and 5xx are retryable; other non-2xx are not
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("geocode service error (status %d)", resp.StatusCode)
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			backoffDelay := addJitter(c.backoffBase * time.Duration(1<<attempt))
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					backoffDelay = time.Duration(seconds) * time.Second
				}
			}
			c.clock.Sleep(backoffDelay)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("geocode service error (status %d): %s", resp.StatusCode, string(respBody))
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return fmt.Errorf("max retries exceeded")
}

func addJitter(d time.Duration) time.Duration {
	jitter := 0.5 + rand.Float64() // 0.5 to 1.5
	return time.Duration(float64(d) * jitter)
}
