package weather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/myrsky/passo/internal/testhelpers"
	"github.com/myrsky/passo/internal/weather"
)

func TestCurrentTemperature(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.URL.Query().Get("current"); got != "temperature_2m" {
			t.Errorf("current query parameter = %q, want temperature_2m", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":18.4}}`))
	}))
	defer server.Close()

	client := weather.NewClient(server.URL, server.Client(), testhelpers.NewLogger(testhelpers.NewWriter(t)))

	got, err := client.CurrentTemperature(context.Background(), 45.0703, 7.6869)
	if err != nil {
		t.Fatalf("CurrentTemperature() = %v", err)
	}
	if got != 18.4 {
		t.Errorf("temperature = %v, want 18.4", got)
	}

	// Second lookup at the same rounded coordinates hits the cache.
	if _, err = client.CurrentTemperature(context.Background(), 45.0704, 7.6868); err != nil {
		t.Fatalf("cached CurrentTemperature() = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("api called %d times, want 1", calls.Load())
	}
}

func TestCurrentTemperature_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := weather.NewClient(server.URL, server.Client(), testhelpers.NewLogger(testhelpers.NewWriter(t)))

	if _, err := client.CurrentTemperature(context.Background(), 45.0, 7.0); err == nil {
		t.Error("CurrentTemperature() with failing upstream did not return an error")
	}
}
