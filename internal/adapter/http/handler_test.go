package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRoutes_PublicEndpoints(t *testing.T) {
	e, _ := newTestAPI(t)

	cases := []struct {
		name     string
		path     string
		want     int
		contains string
	}{
		{"health", "/health", http.StatusOK, `"status":"ok"`},
		{"metrics", "/metrics", http.StatusOK, "go_goroutines"},
		{"api needs identity", "/api/v1/notifications", http.StatusUnauthorized, "X-User-Id"},
		{"unknown route", "/api/v2/chamas", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d; body=%s", rec.Code, tc.want, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.contains) {
				t.Fatalf("body missing %q: %s", tc.contains, rec.Body.String())
			}
		})
	}
}

func TestRoutes_HealthReportsUTCTime(t *testing.T) {
	e, _ := newTestAPI(t)
	start := time.Now().UTC()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
	at, err := time.Parse(time.RFC3339Nano, body.Time)
	if err != nil {
		t.Fatalf("time %q: %v", body.Time, err)
	}
	if at.Location() != time.UTC || at.Before(start.Add(-2*time.Second)) || at.After(time.Now().UTC().Add(2*time.Second)) {
		t.Fatalf("health time = %v, started %v", at, start)
	}
}
