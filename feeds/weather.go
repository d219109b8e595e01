package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WeatherDescription is one condition entry from the weather upstream.
type WeatherDescription struct {
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}

// CurrentConditions is the current-weather half of a report.
type CurrentConditions struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []WeatherDescription `json:"weather"`
}

// ForecastEntry is one forecast slot.
type ForecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []WeatherDescription `json:"weather"`
}

// Forecast is the forecast half of a report.
type Forecast struct {
	List []ForecastEntry `json:"list"`
}

// WeatherReport merges the current and forecast upstream responses.
type WeatherReport struct {
	Current  CurrentConditions `json:"current"`
	Forecast Forecast          `json:"forecast"`
}

// WeatherClient fetches the current-conditions and forecast endpoints.
type WeatherClient struct {
	currentURL  string
	forecastURL string
	httpClient  *http.Client
}

// NewWeatherClient creates a client for the two weather endpoints.
func NewWeatherClient(currentURL, forecastURL string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{
		currentURL:  currentURL,
		forecastURL: forecastURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// FetchWeather fetches both endpoints concurrently and merges them.
// Either leg failing fails the whole report.
func (c *WeatherClient) FetchWeather(ctx context.Context) (*WeatherReport, error) {
	errs := make(chan error, 2)
	var report WeatherReport

	go func() {
		errs <- c.getJSON(ctx, c.currentURL, &report.Current)
	}()
	go func() {
		errs <- c.getJSON(ctx, c.forecastURL, &report.Forecast)
	}()
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			return nil, err
		}
	}
	if len(report.Current.Weather) == 0 {
		return nil, fmt.Errorf("%w: current conditions missing weather block", ErrMalformedPayload)
	}
	return &report, nil
}

func (c *WeatherClient) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d from %s", ErrUpstreamUnavailable, resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
