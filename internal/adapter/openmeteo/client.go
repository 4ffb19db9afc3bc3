// Package openmeteo implements the weather source against the Open-Meteo
// forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/flood-risk-service/internal/apperr"
	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// Hourly field sets, in preference order. The reduced set is used after the
// provider rejects the soil-moisture field for a location.
var (
	fullFields    = []string{"precipitation", "rain", "soil_moisture_0_to_1cm", "relative_humidity_2m"}
	reducedFields = []string{"precipitation", "rain", "relative_humidity_2m"}
)

// Client fetches hourly forecast series from Open-Meteo. All requests pass
// through a shared circuit breaker; a breaker stuck open surfaces through
// CheckReadiness so the readiness probe fails during a provider outage.
type Client struct {
	baseURL      string
	forecastDays int
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker[[]byte]
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewClient creates an Open-Meteo client from service configuration.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			// A well-formed field rejection is a provider answer, not an
			// outage; it must not push the breaker toward open.
			return err == nil || apperr.CodeOf(err) == apperr.CodeUpstreamFieldUnsupported
		},
	})

	return &Client{
		baseURL:      cfg.OpenMeteoBaseURL,
		forecastDays: cfg.ForecastDays,
		httpClient:   &http.Client{Timeout: cfg.OpenMeteoTimeout},
		breaker:      breaker,
		metrics:      metrics,
		logger:       logger,
	}
}

// CheckReadiness reports an error while the circuit breaker is open.
func (c *Client) CheckReadiness(_ context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return errors.New("open-meteo circuit breaker is open")
	}
	return nil
}

// FetchOne retrieves the hourly series for a single coordinate.
func (c *Client) FetchOne(ctx context.Context, coord domain.Coordinate) (domain.HourlySeries, error) {
	body, err := c.getWithFallback(ctx, []domain.Coordinate{coord}, "single")
	if err != nil {
		return domain.HourlySeries{}, err
	}

	var payload forecastResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.HourlySeries{}, apperr.Wrap(apperr.CodeUpstreamUnavailable, "decode forecast response", err)
	}
	if err := validateSeries(payload.Hourly); err != nil {
		return domain.HourlySeries{}, err
	}
	return payload.Hourly, nil
}

// FetchBatch retrieves hourly series for multiple coordinates in one request.
// The provider returns a positionally-ordered array; the result is zipped
// with the input order and never re-sorted.
func (c *Client) FetchBatch(ctx context.Context, coords []domain.Coordinate) ([]domain.HourlySeries, error) {
	body, err := c.getWithFallback(ctx, coords, "batch")
	if err != nil {
		return nil, err
	}

	var payloads []forecastResponse
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, apperr.Wrap(apperr.CodeUpstreamUnavailable, "decode batch forecast response", err)
	}
	if len(payloads) != len(coords) {
		return nil, apperr.Newf(apperr.CodeUpstreamUnavailable,
			"batch response has %d series for %d coordinates", len(payloads), len(coords))
	}

	series := make([]domain.HourlySeries, len(payloads))
	for i, p := range payloads {
		if err := validateSeries(p.Hourly); err != nil {
			return nil, err
		}
		series[i] = p.Hourly
	}
	return series, nil
}

// getWithFallback performs a GET with the full field set and retries exactly
// once without soil moisture when the provider rejects that field. Any other
// error propagates unchanged.
func (c *Client) getWithFallback(ctx context.Context, coords []domain.Coordinate, mode string) ([]byte, error) {
	body, err := c.get(ctx, coords, fullFields, mode)
	if err == nil || apperr.CodeOf(err) != apperr.CodeUpstreamFieldUnsupported {
		return body, err
	}

	c.metrics.UpstreamFallbacks.Inc()
	c.logger.Warn("soil moisture unsupported, retrying with humidity proxy", "mode", mode)
	return c.get(ctx, coords, reducedFields, mode)
}

func (c *Client) get(ctx context.Context, coords []domain.Coordinate, fields []string, mode string) ([]byte, error) {
	fullURL := c.requestURL(coords, fields)

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, fullURL)
	})
	c.metrics.UpstreamDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = apperr.Wrap(apperr.CodeUpstreamUnavailable, "open-meteo circuit breaker rejected request", err)
		}
	}
	c.metrics.UpstreamRequests.WithLabelValues(mode, outcome).Inc()

	return body, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "create request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUpstreamUnavailable, "open-meteo request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUpstreamUnavailable, "read open-meteo response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && strings.Contains(apiErr.Reason, "soil_moisture") {
			return nil, apperr.New(apperr.CodeUpstreamFieldUnsupported, apiErr.Reason)
		}
		return nil, apperr.Newf(apperr.CodeUpstreamUnavailable,
			"open-meteo status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

// requestURL builds the forecast URL for one or more coordinates. Batch
// requests comma-join latitudes and longitudes; the provider answers with an
// array in the same positional order.
func (c *Client) requestURL(coords []domain.Coordinate, fields []string) string {
	lats := make([]string, len(coords))
	lons := make([]string, len(coords))
	for i, coord := range coords {
		lats[i] = strconv.FormatFloat(coord.Lat, 'f', -1, 64)
		lons[i] = strconv.FormatFloat(coord.Lon, 'f', -1, 64)
	}

	params := url.Values{
		"latitude":      {strings.Join(lats, ",")},
		"longitude":     {strings.Join(lons, ",")},
		"hourly":        {strings.Join(fields, ",")},
		"forecast_days": {strconv.Itoa(c.forecastDays)},
		"timezone":      {"auto"},
	}
	return c.baseURL + "?" + params.Encode()
}

// validateSeries enforces the series invariants at the provider boundary so
// downstream aggregation can assume them unconditionally. A payload that
// fails here is an upstream fault, not an internal one.
func validateSeries(series domain.HourlySeries) error {
	if err := series.Validate(); err != nil {
		return apperr.Wrap(apperr.CodeUpstreamUnavailable, "malformed forecast payload", err)
	}
	return nil
}

func truncate(body []byte, limit int) string {
	s := string(body)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// Open-Meteo API response types.

type forecastResponse struct {
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
	Hourly    domain.HourlySeries `json:"hourly"`
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}
