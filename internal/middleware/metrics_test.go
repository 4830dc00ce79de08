package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMetricsAuthMiddleware_DisabledPassesThrough(t *testing.T) {
	mw := NewMetricsAuthMiddleware("", "")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	mw.Handler(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with auth disabled, got %d", rec.Code)
	}
}

func TestMetricsAuthMiddleware_RequiresCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("prometheus", "scrapeme")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		user     string
		pass     string
		noAuth   bool
		expected int
	}{
		{name: "no credentials", noAuth: true, expected: http.StatusUnauthorized},
		{name: "wrong password", user: "prometheus", pass: "wrong", expected: http.StatusUnauthorized},
		{name: "wrong username", user: "grafana", pass: "scrapeme", expected: http.StatusUnauthorized},
		{name: "correct credentials", user: "prometheus", pass: "scrapeme", expected: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/metrics", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rec := httptest.NewRecorder()

			mw.Handler(handler).ServeHTTP(rec, req)

			if rec.Code != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, rec.Code)
			}
			if tt.expected == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header on 401")
			}
		})
	}
}
