package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/binpack/internal/application"
	"github.com/eugenenazirov/binpack/internal/config"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	t.Setenv("BINPACK_ITEMS", "")
	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.RateLimitRPS = 0
	cfg.RateLimitBurst = 0

	app, err := application.New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	return app.Server().Handler
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	items := []float64{0.42, 0.25, 0.27, 0.07, 0.72, 0.86}
	payload, _ := json.Marshal(map[string]any{"items": items})
	rec = performRequest(t, handler, http.MethodPut, "/api/items", payload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from items update, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/min-bins", []byte(`{}`), jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from min-bins, got %d", rec.Code)
	}
	var minBins struct {
		MinBins int `json:"minBins"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&minBins); err != nil {
		t.Fatalf("decode min-bins response: %v", err)
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/assign", []byte(`{}`), jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from assign, got %d", rec.Code)
	}
	var assigned struct {
		Items      []float64 `json:"items"`
		Assignment []int     `json:"assignment"`
		Bins       int       `json:"bins"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&assigned); err != nil {
		t.Fatalf("decode assign response: %v", err)
	}

	if !slices.Equal(assigned.Items, items) {
		t.Fatalf("expected stored items to be solved, got %v", assigned.Items)
	}
	if assigned.Bins != minBins.MinBins || assigned.Bins != 3 {
		t.Fatalf("expected assignment to use the 3 minimum bins, got %d (min %d)", assigned.Bins, minBins.MinBins)
	}
	for bin := 1; bin <= assigned.Bins; bin++ {
		if !slices.Contains(assigned.Assignment, bin) {
			t.Fatalf("bin %d unused in %v", bin, assigned.Assignment)
		}
	}

	body, _ := json.Marshal(map[string]any{"bins": assigned.Bins - 1})
	rec = performRequest(t, handler, http.MethodPost, "/api/feasible", body, jsonHeaders)
	var feasible struct {
		Feasible bool `json:"feasible"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&feasible); err != nil {
		t.Fatalf("decode feasible response: %v", err)
	}
	if feasible.Feasible {
		t.Fatalf("expected items not to fit one bin fewer than the minimum")
	}
}
