package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/motosense/backend/internal/usecase"
)

func TestWriteSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["success"].(bool); !got {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["error"].(string); got == "" {
		t.Fatalf("expected error message in response, got %v", body["error"])
	}
	if got, _ := body["timestamp"].(string); got == "" {
		t.Fatalf("expected timestamp in error response")
	}
	if _, ok := body["success"]; ok {
		t.Fatalf("did not expect success key in error response")
	}
}

func TestMapErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid input", err: usecase.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "unauthorized", err: usecase.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "inactive source", err: usecase.ErrSourceInactive, want: http.StatusForbidden},
		{name: "not found", err: usecase.ErrNotFound, want: http.StatusNotFound},
		{name: "duplicate prediction", err: usecase.ErrDuplicatePrediction, want: http.StatusConflict},
		{name: "predictions locked", err: usecase.ErrPredictionsLocked, want: http.StatusConflict},
		{name: "no round open", err: usecase.ErrNoRoundOpen, want: http.StatusConflict},
		{name: "no more rounds", err: usecase.ErrNoMoreRounds, want: http.StatusConflict},
		{name: "rate limited", err: usecase.ErrRateLimited, want: http.StatusTooManyRequests},
		{name: "dependency unavailable", err: usecase.ErrDependencyUnavailable, want: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tt.err)
			if got := mapErrorStatus(context.Background(), wrapped); got != tt.want {
				t.Fatalf("mapErrorStatus(%v)=%d want=%d", tt.err, got, tt.want)
			}
		})
	}
}
