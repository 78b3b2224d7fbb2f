package server

import (
	"fmt"
	"time"
)

// HealthRecord is an append-only snapshot of one health observation for one
// server. Records are never mutated after creation.
type HealthRecord struct {
	id                uint
	serverID          uint
	cpuPercent        float64
	memoryPercent     float64
	diskPercent       float64
	uptimeSeconds     uint64
	activeConnections uint
	status            HealthStatus
	checkedAt         time.Time
}

// NewHealthRecord creates a snapshot from a successful status call.
func NewHealthRecord(serverID uint, cpu, memory, disk float64, uptimeSeconds uint64, activeConnections uint, checkedAt time.Time) (*HealthRecord, error) {
	if serverID == 0 {
		return nil, fmt.Errorf("server ID is required")
	}
	return &HealthRecord{
		serverID:          serverID,
		cpuPercent:        cpu,
		memoryPercent:     memory,
		diskPercent:       disk,
		uptimeSeconds:     uptimeSeconds,
		activeConnections: activeConnections,
		status:            ClassifyResources(cpu, memory, disk),
		checkedAt:         checkedAt,
	}, nil
}

// NewOfflineHealthRecord creates a snapshot for a server whose status call
// failed with a connection error. Resource fields are zero by definition.
func NewOfflineHealthRecord(serverID uint, checkedAt time.Time) (*HealthRecord, error) {
	if serverID == 0 {
		return nil, fmt.Errorf("server ID is required")
	}
	return &HealthRecord{
		serverID:  serverID,
		status:    HealthStatusOffline,
		checkedAt: checkedAt,
	}, nil
}

// ReconstructHealthRecord reconstructs a health record from persistence
func ReconstructHealthRecord(
	id, serverID uint,
	cpu, memory, disk float64,
	uptimeSeconds uint64,
	activeConnections uint,
	status HealthStatus,
	checkedAt time.Time,
) (*HealthRecord, error) {
	if id == 0 {
		return nil, fmt.Errorf("health record ID cannot be zero")
	}
	if serverID == 0 {
		return nil, fmt.Errorf("server ID is required")
	}
	return &HealthRecord{
		id:                id,
		serverID:          serverID,
		cpuPercent:        cpu,
		memoryPercent:     memory,
		diskPercent:       disk,
		uptimeSeconds:     uptimeSeconds,
		activeConnections: activeConnections,
		status:            status,
		checkedAt:         checkedAt,
	}, nil
}

func (r *HealthRecord) ID() uint                { return r.id }
func (r *HealthRecord) ServerID() uint          { return r.serverID }
func (r *HealthRecord) CPUPercent() float64     { return r.cpuPercent }
func (r *HealthRecord) MemoryPercent() float64  { return r.memoryPercent }
func (r *HealthRecord) DiskPercent() float64    { return r.diskPercent }
func (r *HealthRecord) UptimeSeconds() uint64   { return r.uptimeSeconds }
func (r *HealthRecord) ActiveConnections() uint { return r.activeConnections }
func (r *HealthRecord) Status() HealthStatus    { return r.status }
func (r *HealthRecord) CheckedAt() time.Time    { return r.checkedAt }

// SetID assigns the ID after persistence. It can only be set once.
func (r *HealthRecord) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("health record ID already set")
	}
	if id == 0 {
		return fmt.Errorf("health record ID cannot be zero")
	}
	r.id = id
	return nil
}
