package server

import "fmt"

// HealthStatus classifies one observation of a server's condition.
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusWarning  HealthStatus = "warning"
	HealthStatusCritical HealthStatus = "critical"
	HealthStatusOffline  HealthStatus = "offline"
)

const (
	// Resource thresholds in percent. Values strictly above the threshold
	// fall into the worse class, so 80.0 is still healthy and 95.0 warning.
	warningThreshold  = 80.0
	criticalThreshold = 95.0
)

func NewHealthStatus(status string) (HealthStatus, error) {
	hs := HealthStatus(status)

	switch hs {
	case HealthStatusHealthy, HealthStatusWarning, HealthStatusCritical, HealthStatusOffline:
		return hs, nil
	default:
		return "", fmt.Errorf("invalid health status: %s", status)
	}
}

// ClassifyResources derives a health status from cpu/memory/disk usage percentages.
// Offline is never produced here; it is reserved for failed status calls.
func ClassifyResources(cpu, memory, disk float64) HealthStatus {
	if cpu > criticalThreshold || memory > criticalThreshold || disk > criticalThreshold {
		return HealthStatusCritical
	}
	if cpu > warningThreshold || memory > warningThreshold || disk > warningThreshold {
		return HealthStatusWarning
	}
	return HealthStatusHealthy
}

func (hs HealthStatus) String() string {
	return string(hs)
}

func (hs HealthStatus) IsOffline() bool {
	return hs == HealthStatusOffline
}

func (hs HealthStatus) IsHealthy() bool {
	return hs == HealthStatusHealthy
}

// IsDegraded reports whether the status calls for operator attention
// without the server being unreachable.
func (hs HealthStatus) IsDegraded() bool {
	return hs == HealthStatusWarning || hs == HealthStatusCritical
}

func GetAllHealthStatuses() []HealthStatus {
	return []HealthStatus{
		HealthStatusHealthy,
		HealthStatusWarning,
		HealthStatusCritical,
		HealthStatusOffline,
	}
}
