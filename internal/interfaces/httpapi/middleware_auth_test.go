package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireBearerToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		configured string
		header     string
		want       int
	}{
		{name: "valid token", configured: "secret", header: "Bearer secret", want: http.StatusOK},
		{name: "case-insensitive scheme", configured: "secret", header: "bearer secret", want: http.StatusOK},
		{name: "missing header", configured: "secret", header: "", want: http.StatusUnauthorized},
		{name: "wrong token", configured: "secret", header: "Bearer other", want: http.StatusUnauthorized},
		{name: "malformed header", configured: "secret", header: "secret", want: http.StatusUnauthorized},
		{name: "unconfigured token fails closed", configured: "", header: "Bearer secret", want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireBearerToken(tt.configured, next)
			req := httptest.NewRequest(http.MethodPost, "/internal/sync", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
