package server

import (
	"testing"
)

func TestNewHealthStatus_Valid(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected HealthStatus
	}{
		{"healthy status", "healthy", HealthStatusHealthy},
		{"warning status", "warning", HealthStatusWarning},
		{"critical status", "critical", HealthStatusCritical},
		{"offline status", "offline", HealthStatusOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := NewHealthStatus(tt.status)
			if err != nil {
				t.Errorf("NewHealthStatus(%q) error = %v, want nil", tt.status, err)
				return
			}
			if status != tt.expected {
				t.Errorf("NewHealthStatus(%q) = %v, want %v", tt.status, status, tt.expected)
			}
		})
	}
}

func TestNewHealthStatus_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		status string
	}{
		{"invalid status", "degraded"},
		{"empty status", ""},
		{"uppercase", "HEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHealthStatus(tt.status)
			if err == nil {
				t.Errorf("NewHealthStatus(%q) error = nil, want error", tt.status)
			}
		})
	}
}

func TestClassifyResources_ThresholdEdges(t *testing.T) {
	tests := []struct {
		name             string
		cpu, mem, disk   float64
		expected         HealthStatus
	}{
		{"all zero", 0, 0, 0, HealthStatusHealthy},
		{"cpu exactly at warning threshold", 80.0, 10, 10, HealthStatusHealthy},
		{"cpu just above warning threshold", 80.1, 10, 10, HealthStatusWarning},
		{"cpu exactly at critical threshold", 95.0, 10, 10, HealthStatusWarning},
		{"cpu just above critical threshold", 95.1, 10, 10, HealthStatusCritical},
		{"memory above warning", 10, 81, 10, HealthStatusWarning},
		{"memory above critical", 10, 96, 10, HealthStatusCritical},
		{"disk above warning", 10, 10, 85, HealthStatusWarning},
		{"disk above critical", 10, 10, 99, HealthStatusCritical},
		{"critical wins over warning", 85, 96, 10, HealthStatusCritical},
		{"fully saturated", 100, 100, 100, HealthStatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyResources(tt.cpu, tt.mem, tt.disk)
			if result != tt.expected {
				t.Errorf("ClassifyResources(%v, %v, %v) = %v, want %v",
					tt.cpu, tt.mem, tt.disk, result, tt.expected)
			}
		})
	}
}

func TestHealthStatus_Predicates(t *testing.T) {
	if !HealthStatusOffline.IsOffline() {
		t.Error("IsOffline() = false for offline status")
	}
	if HealthStatusHealthy.IsOffline() {
		t.Error("IsOffline() = true for healthy status")
	}
	if !HealthStatusHealthy.IsHealthy() {
		t.Error("IsHealthy() = false for healthy status")
	}
	if !HealthStatusWarning.IsDegraded() {
		t.Error("IsDegraded() = false for warning status")
	}
	if !HealthStatusCritical.IsDegraded() {
		t.Error("IsDegraded() = false for critical status")
	}
	if HealthStatusOffline.IsDegraded() {
		t.Error("IsDegraded() = true for offline status")
	}
}
