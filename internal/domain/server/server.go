package server

import (
	"fmt"
	"time"
)

// Server represents the server aggregate root: one remote VPN gateway panel
// tracked by the fleet engine. Sync fields are owned by the sync pass, health
// fields by the health monitor, traffic counters by the reconciler.
type Server struct {
	id                  uint
	name                string
	apiURL              string
	apiPort             uint16
	username            string
	password            string
	maxUsers            uint
	currentUsers        uint
	isActive            bool
	isSynced            bool
	lastSyncAt          *time.Time
	isHealthy           bool
	consecutiveFailures int
	trafficUp           uint64
	trafficDown         uint64
	createdAt           time.Time
	updatedAt           time.Time
}

// NewServer creates a new server aggregate
func NewServer(name, apiURL string, apiPort uint16, username, password string, maxUsers uint) (*Server, error) {
	if name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if apiURL == "" {
		return nil, fmt.Errorf("server api url is required")
	}
	if apiPort == 0 {
		return nil, fmt.Errorf("server api port is required")
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("server credentials are required")
	}

	now := time.Now()
	return &Server{
		name:      name,
		apiURL:    apiURL,
		apiPort:   apiPort,
		username:  username,
		password:  password,
		maxUsers:  maxUsers,
		isActive:  true,
		isHealthy: true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructServer reconstructs a server from persistence
func ReconstructServer(
	id uint,
	name, apiURL string,
	apiPort uint16,
	username, password string,
	maxUsers, currentUsers uint,
	isActive, isSynced bool,
	lastSyncAt *time.Time,
	isHealthy bool,
	consecutiveFailures int,
	trafficUp, trafficDown uint64,
	createdAt, updatedAt time.Time,
) (*Server, error) {
	if id == 0 {
		return nil, fmt.Errorf("server ID cannot be zero")
	}
	if name == "" {
		return nil, fmt.Errorf("server name is required")
	}

	return &Server{
		id:                  id,
		name:                name,
		apiURL:              apiURL,
		apiPort:             apiPort,
		username:            username,
		password:            password,
		maxUsers:            maxUsers,
		currentUsers:        currentUsers,
		isActive:            isActive,
		isSynced:            isSynced,
		lastSyncAt:          lastSyncAt,
		isHealthy:           isHealthy,
		consecutiveFailures: consecutiveFailures,
		trafficUp:           trafficUp,
		trafficDown:         trafficDown,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}, nil
}

func (s *Server) ID() uint              { return s.id }
func (s *Server) Name() string          { return s.name }
func (s *Server) APIURL() string        { return s.apiURL }
func (s *Server) APIPort() uint16       { return s.apiPort }
func (s *Server) Username() string      { return s.username }
func (s *Server) Password() string      { return s.password }
func (s *Server) MaxUsers() uint        { return s.maxUsers }
func (s *Server) CurrentUsers() uint    { return s.currentUsers }
func (s *Server) IsActive() bool        { return s.isActive }
func (s *Server) IsSynced() bool        { return s.isSynced }
func (s *Server) LastSyncAt() *time.Time { return s.lastSyncAt }
func (s *Server) IsHealthy() bool       { return s.isHealthy }
func (s *Server) ConsecutiveFailures() int { return s.consecutiveFailures }
func (s *Server) TrafficUp() uint64     { return s.trafficUp }
func (s *Server) TrafficDown() uint64   { return s.trafficDown }
func (s *Server) CreatedAt() time.Time  { return s.createdAt }
func (s *Server) UpdatedAt() time.Time  { return s.updatedAt }

// SetID assigns the ID after persistence. It can only be set once.
func (s *Server) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("server ID already set")
	}
	if id == 0 {
		return fmt.Errorf("server ID cannot be zero")
	}
	s.id = id
	return nil
}

// LoadRatio returns current_users / max_users, used for alternate selection.
// A server with unknown capacity sorts as fully loaded.
func (s *Server) LoadRatio() float64 {
	if s.maxUsers == 0 {
		return 1.0
	}
	return float64(s.currentUsers) / float64(s.maxUsers)
}

// SetActive flips the active flag from the remote status observation.
func (s *Server) SetActive(active bool) {
	s.isActive = active
	s.updatedAt = time.Now()
}

// MarkSynced records a completed sync pass.
func (s *Server) MarkSynced(at time.Time) {
	s.isSynced = true
	s.lastSyncAt = &at
	s.updatedAt = time.Now()
}

// MarkSyncFailed records an aborted sync pass.
func (s *Server) MarkSyncFailed() {
	s.isSynced = false
	s.updatedAt = time.Now()
}

// RecordHealthSuccess resets the failure streak after a reachable status call.
func (s *Server) RecordHealthSuccess() {
	s.isHealthy = true
	s.consecutiveFailures = 0
	s.updatedAt = time.Now()
}

// RecordHealthFailure increments the failure streak and reports whether this
// observation transitioned the server from healthy to unhealthy. Rotation is
// triggered on the transition, not on every poll of an already-down server.
func (s *Server) RecordHealthFailure(threshold int) (transitioned bool) {
	s.consecutiveFailures++
	wasHealthy := s.isHealthy
	if s.consecutiveFailures >= threshold {
		s.isHealthy = false
	}
	s.updatedAt = time.Now()
	return wasHealthy && !s.isHealthy
}

// SetTraffic overwrites the cumulative counters with the totals observed in
// the latest remote listing. Panel counters are already cumulative, so the
// observed sum replaces rather than adds.
func (s *Server) SetTraffic(up, down uint64) {
	s.trafficUp = up
	s.trafficDown = down
	s.updatedAt = time.Now()
}

// SetCurrentUsers overwrites the load observed during reconciliation.
func (s *Server) SetCurrentUsers(count uint) {
	s.currentUsers = count
	s.updatedAt = time.Now()
}

// IsEligibleAlternate reports whether this server can receive rotated
// subscriptions away from the given unhealthy server.
func (s *Server) IsEligibleAlternate(unhealthyID uint) bool {
	return s.id != unhealthyID && s.isActive && s.isHealthy
}
