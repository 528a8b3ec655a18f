package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jwebster45206/saga-engine/internal/services"
	"github.com/jwebster45206/saga-engine/pkg/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	tests := []struct {
		name            string
		setupStorage    func() storage.Storage
		setupPlanner    func() services.Planner
		expectedStatus  int
		expectedHealth  string
		expectedStorage string
		expectedPlanner string
	}{
		{
			name:            "all healthy",
			setupStorage:    func() storage.Storage { return storage.NewMockStorage() },
			setupPlanner:    func() services.Planner { return services.NewMockPlanner() },
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
			expectedPlanner: "healthy",
		},
		{
			name: "unhealthy storage",
			setupStorage: func() storage.Storage {
				s := storage.NewMockStorage()
				s.SetPingError(errors.New("connection refused"))
				return s
			},
			setupPlanner:    func() services.Planner { return services.NewMockPlanner() },
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "unhealthy",
			expectedPlanner: "healthy",
		},
		{
			name:         "unconfigured planner",
			setupStorage: func() storage.Storage { return storage.NewMockStorage() },
			setupPlanner: func() services.Planner {
				p := services.NewMockPlanner()
				p.ReadyErr = errors.New("no API key")
				return p
			},
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "healthy",
			expectedPlanner: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupStorage(), tt.setupPlanner(), logger)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Status != tt.expectedHealth {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedHealth, response.Status)
			}
			if response.Service != "saga-engine" {
				t.Errorf("Expected service 'saga-engine', got '%s'", response.Service)
			}
			if got := response.Components["storage"]; got != tt.expectedStorage {
				t.Errorf("Expected storage status '%s', got '%v'", tt.expectedStorage, got)
			}

			planner, ok := response.Components["planner"].(map[string]any)
			if !ok {
				t.Fatalf("Expected planner component to be a map, got %T", response.Components["planner"])
			}
			if planner["status"] != tt.expectedPlanner {
				t.Errorf("Expected planner status '%s', got '%v'", tt.expectedPlanner, planner["status"])
			}
			if planner["name"] != "mock" {
				t.Errorf("Expected planner name 'mock', got '%v'", planner["name"])
			}
		})
	}
}

func TestHealthHandler_NoPlanner(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	handler := NewHealthHandler(storage.NewMockStorage(), nil, logger)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	var response HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if _, ok := response.Components["planner"]; ok {
		t.Error("Expected no planner component")
	}
}
