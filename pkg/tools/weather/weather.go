package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// Client wraps the two-step Open-Meteo flow: geocode a free-text location,
// then fetch the current conditions. Metric units only. Every failure is
// caught here and rendered as a user-facing sentence; Current never returns
// an error.
type Client struct {
	httpClient  *http.Client
	geocodeURL  string
	forecastURL string
	logger      *log.Logger
	cache       sync.Map // In-memory cache
}

type cachedItem struct {
	data      string
	expiresAt time.Time
}

func NewClient(logger *log.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		geocodeURL:  defaultGeocodeURL,
		forecastURL: defaultForecastURL,
		logger:      logger,
	}
}

// NewClientWithURLs is used by tests to point the client at a stub server.
func NewClientWithURLs(logger *log.Logger, geocodeURL, forecastURL string) *Client {
	c := NewClient(logger)
	c.geocodeURL = geocodeURL
	c.forecastURL = forecastURL
	return c
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// Current returns a weather summary for the location, or an apology string
// when anything goes wrong.
func (c *Client) Current(ctx context.Context, location string) string {
	cacheKey := "weather:" + location
	if val, ok := c.getFromCache(cacheKey); ok {
		return val
	}

	params := url.Values{}
	params.Add("name", location)
	params.Add("count", "1")

	var geo geocodeResponse
	if err := c.getJSON(ctx, c.geocodeURL+"?"+params.Encode(), &geo); err != nil {
		c.logger.Printf("[WEATHER] geocode failed for %q: %v", location, err)
		return "Sorry, I couldn't fetch the weather right now. Please try again in a moment."
	}

	if len(geo.Results) == 0 {
		return fmt.Sprintf("I couldn't find a location called \"%s\". Could you check the spelling?", location)
	}
	place := geo.Results[0]

	fparams := url.Values{}
	fparams.Add("latitude", fmt.Sprintf("%f", place.Latitude))
	fparams.Add("longitude", fmt.Sprintf("%f", place.Longitude))
	fparams.Add("current", "temperature_2m,relative_humidity_2m,wind_speed_10m")

	var forecast forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"?"+fparams.Encode(), &forecast); err != nil {
		c.logger.Printf("[WEATHER] forecast failed for %q: %v", location, err)
		return "Sorry, I couldn't fetch the weather right now. Please try again in a moment."
	}

	summary := fmt.Sprintf(
		"Current weather in %s, %s: %.1f°C, %.0f%% humidity, wind %.1f km/h.",
		place.Name, place.Country,
		forecast.Current.Temperature, forecast.Current.Humidity, forecast.Current.WindSpeed,
	)

	c.setCache(cacheKey, summary, 10*time.Minute)
	return summary
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

// --- Caching Helpers ---

func (c *Client) getFromCache(key string) (string, bool) {
	val, ok := c.cache.Load(key)
	if !ok {
		return "", false
	}
	item := val.(cachedItem)
	if time.Now().After(item.expiresAt) {
		c.cache.Delete(key)
		return "", false
	}
	return item.data, true
}

func (c *Client) setCache(key string, data string, duration time.Duration) {
	c.cache.Store(key, cachedItem{
		data:      data,
		expiresAt: time.Now().Add(duration),
	})
}
