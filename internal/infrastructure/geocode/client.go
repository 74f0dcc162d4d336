package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linkyfire/guide-backend/internal/infrastructure/config"
	domainErrors "github.com/linkyfire/guide-backend/pkg/errors"
)

// Client resolves a "lat,lon" coordinate string into a human-readable place
// name via a Nominatim-compatible reverse-geocoding endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// reverseResponse is the subset of the Nominatim jsonv2 payload we read.
type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error,omitempty"`
}

// NewClient creates a reverse-geocoding client.
func NewClient(cfg config.GeocodeConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(zap.String("component", "geocode")),
	}
}

// ParseCoordinates parses a "<lat>,<lon>" string. Malformed input is a caller
// error and fails before any network call is made.
func ParseCoordinates(coordinates string) (float64, float64, error) {
	parts := strings.Split(coordinates, ",")
	if len(parts) != 2 {
		return 0, 0, domainErrors.NewInvalidInputError(
			fmt.Sprintf("invalid coordinates %q: expected \"lat,lon\"", coordinates))
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, domainErrors.NewInvalidInputError(
			fmt.Sprintf("invalid latitude %q", strings.TrimSpace(parts[0])))
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, domainErrors.NewInvalidInputError(
			fmt.Sprintf("invalid longitude %q", strings.TrimSpace(parts[1])))
	}

	if lat < -90 || lat > 90 {
		return 0, 0, domainErrors.NewInvalidInputError(
			fmt.Sprintf("latitude %v out of range [-90,90]", lat))
	}
	if lon < -180 || lon > 180 {
		return 0, 0, domainErrors.NewInvalidInputError(
			fmt.Sprintf("longitude %v out of range [-180,180]", lon))
	}

	return lat, lon, nil
}

// Resolve returns the formatted address for a "lat,lon" string. Provider
// failure or an empty result degrades to the original coordinate string;
// only malformed input is an error.
func (c *Client) Resolve(ctx context.Context, coordinates string) (string, error) {
	lat, lon, err := ParseCoordinates(coordinates)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	reqURL := c.baseURL + "/reverse?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Warn("Failed to build reverse geocode request", zap.Error(err))
		return coordinates, nil
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Reverse geocode request failed",
			zap.String("coordinates", coordinates),
			zap.Error(err),
		)
		return coordinates, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Reverse geocode returned non-OK status",
			zap.String("coordinates", coordinates),
			zap.Int("status", resp.StatusCode),
		)
		return coordinates, nil
	}

	var result reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Warn("Failed to parse reverse geocode response", zap.Error(err))
		return coordinates, nil
	}

	if result.Error != "" || result.DisplayName == "" {
		c.logger.Warn("Reverse geocode found no result",
			zap.String("coordinates", coordinates),
			zap.String("provider_error", result.Error),
		)
		return coordinates, nil
	}

	return result.DisplayName, nil
}
