package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/infrastructure/config"
)

func testConfig(baseURL string) *config.GeocodeConfig {
	return &config.GeocodeConfig{
		BaseURL:   baseURL,
		UserAgent: "dispatch-test/1.0",
		Timeout:   2 * time.Second,
		RateLimit: config.RateLimitConfig{Requests: 100, Burst: 100},
		Retry:     config.RetryConfig{MaxAttempts: 2, BackoffBase: time.Millisecond},
	}
}

func testClock() shared.Clock {
	return shared.NewMockClock(time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC))
}

func TestGeocode_ParsesCoordinate(t *testing.T) {
	var gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"34.702500","lon":"135.495900"}]`))
	}))
	defer server.Close()

	client := NewNominatimClient(testConfig(server.URL), testClock())
	coord, err := client.Geocode(context.Background(), "大阪市北区梅田1-1-1")
	require.NoError(t, err)

	assert.InDelta(t, 34.7025, coord.Lat, 0.0001)
	assert.InDelta(t, 135.4959, coord.Lng, 0.0001)
	assert.Equal(t, "大阪市北区梅田1-1-1", gotQuery)
	assert.Equal(t, "dispatch-test/1.0", gotAgent)
}

func TestGeocode_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewNominatimClient(testConfig(server.URL), testClock())
	_, err := client.Geocode(context.Background(), "存在しない住所")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no geocoding result")
}

func TestGeocode_RetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"lat":"34.6659","lon":"135.5013"}]`))
	}))
	defer server.Close()

	client := NewNominatimClient(testConfig(server.URL), testClock())
	coord, err := client.Geocode(context.Background(), "大阪市中央区難波")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.InDelta(t, 34.6659, coord.Lat, 0.0001)
}

func TestGeocode_ClientErrorNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewNominatimClient(testConfig(server.URL), testClock())
	_, err := client.Geocode(context.Background(), "梅田")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGeocode_RetriesExhausted(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewNominatimClient(testConfig(server.URL), testClock())
	_, err := client.Geocode(context.Background(), "梅田")
	require.Error(t, err)
	assert.Equal(t, 3, calls) // initial attempt plus two retries
	assert.Contains(t, err.Error(), "max retries exceeded")
}

func TestGeocode_EmptyAddress(t *testing.T) {
	client := NewNominatimClient(testConfig("http://unused.invalid"), testClock())
	_, err := client.Geocode(context.Background(), "")
	require.Error(t, err)

	var validation *shared.ValidationError
	assert.True(t, errors.As(err, &validation))
}
