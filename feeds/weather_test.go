package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const currentJSON = `{"main":{"temp":61.2},"weather":[{"description":"fog","icon":"50d"}]}`
const forecastJSON = `{"list":[{"dt":1700003600,"main":{"temp":58.1},"weather":[{"description":"overcast clouds"}]}]}`

func TestFetchWeather_MergesBothLegs(t *testing.T) {
	current := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(currentJSON))
	}))
	defer current.Close()
	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(forecastJSON))
	}))
	defer forecast.Close()

	c := NewWeatherClient(current.URL, forecast.URL, 5*time.Second)
	report, err := c.FetchWeather(context.Background())
	if err != nil {
		t.Fatalf("FetchWeather: %v", err)
	}
	if report.Current.Main.Temp != 61.2 {
		t.Errorf("current temp = %v, want 61.2", report.Current.Main.Temp)
	}
	if len(report.Current.Weather) != 1 || report.Current.Weather[0].Description != "fog" {
		t.Errorf("current conditions lost: %+v", report.Current.Weather)
	}
	if len(report.Forecast.List) != 1 || report.Forecast.List[0].Dt != 1700003600 {
		t.Errorf("forecast lost: %+v", report.Forecast.List)
	}
}

func TestFetchWeather_EitherLegFailingFailsReport(t *testing.T) {
	current := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(currentJSON))
	}))
	defer current.Close()
	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer forecast.Close()

	c := NewWeatherClient(current.URL, forecast.URL, 5*time.Second)
	_, err := c.FetchWeather(context.Background())
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetchWeather_MissingConditionsIsMalformed(t *testing.T) {
	current := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main":{"temp":61.2}}`))
	}))
	defer current.Close()
	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(forecastJSON))
	}))
	defer forecast.Close()

	c := NewWeatherClient(current.URL, forecast.URL, 5*time.Second)
	_, err := c.FetchWeather(context.Background())
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}
