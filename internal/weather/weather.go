// Package weather looks up the current outdoor temperature for a walk from
// the Open-Meteo forecast API. Lookups are cached per rounded coordinate so
// repeated session starts in the same spot do not hammer the API. The
// temperature is decoration on a walk and never blocks one.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coocood/freecache"
)

const (
	// DefaultBaseURL is the public Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1"

	cacheSizeBytes     = 1024 * 1024
	cacheExpireSeconds = 60 * 60
)

// Client fetches and caches current temperatures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *freecache.Cache
	logger     *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      freecache.NewCache(cacheSizeBytes),
		logger:     logger,
	}
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
	} `json:"current"`
}

// CurrentTemperature returns the temperature in Celsius at the given
// coordinates. Results are cached for an hour per coordinate rounded to two
// decimals, roughly a one kilometre grid.
func (c *Client) CurrentTemperature(ctx context.Context, latitude, longitude float64) (float64, error) {
	cacheKey := []byte(fmt.Sprintf("temp::%.2f::%.2f", latitude, longitude))
	if cached, err := c.cache.Get(cacheKey); err == nil {
		var temperature float64
		if err = json.Unmarshal(cached, &temperature); err == nil {
			return temperature, nil
		}
		c.logger.LogAttrs(ctx, slog.LevelWarn, "unmarshal cached temperature", slog.Any("error", err))
	}

	url := fmt.Sprintf("%s/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m",
		c.baseURL, latitude, longitude)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call forecast api: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "close forecast response body", slog.Any("error", closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("forecast api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read forecast response: %w", err)
	}

	var forecast forecastResponse
	if err = json.Unmarshal(body, &forecast); err != nil {
		return 0, fmt.Errorf("unmarshal forecast response: %w", err)
	}

	temperature := forecast.Current.Temperature
	encoded, err := json.Marshal(temperature)
	if err == nil {
		if err = c.cache.Set(cacheKey, encoded, cacheExpireSeconds); err != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "cache temperature", slog.Any("error", err))
		}
	}
	return temperature, nil
}
