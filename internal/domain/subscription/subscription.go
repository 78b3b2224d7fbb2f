// Package subscription exposes the engine's slice of the billing-owned
// subscription entity: the server/inbound/client binding it may rewrite
// during rotation, and the remaining quota and expiry it needs to recreate
// an account elsewhere. All other subscription concerns belong to billing.
package subscription

import (
	"fmt"
	"time"
)

// Status is the business lifecycle state owned by billing. The engine only
// distinguishes active subscriptions from everything else.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsActive() bool {
	return s == StatusActive
}

// Subscription references the server, inbound and client account a purchased
// plan instance currently uses.
type Subscription struct {
	id                uint
	userID            uint
	status            Status
	serverID          uint
	inboundID         uint
	clientEmail       string
	clientUUID        string
	trafficLimitBytes uint64
	trafficUsedBytes  uint64
	expiresAt         time.Time
	createdAt         time.Time
	updatedAt         time.Time
}

// ReconstructSubscription reconstructs a subscription from persistence.
// Subscriptions are created by billing; the engine never constructs new ones.
func ReconstructSubscription(
	id, userID uint,
	status Status,
	serverID, inboundID uint,
	clientEmail, clientUUID string,
	trafficLimitBytes, trafficUsedBytes uint64,
	expiresAt time.Time,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if serverID == 0 {
		return nil, fmt.Errorf("subscription server reference is required")
	}
	return &Subscription{
		id:                id,
		userID:            userID,
		status:            status,
		serverID:          serverID,
		inboundID:         inboundID,
		clientEmail:       clientEmail,
		clientUUID:        clientUUID,
		trafficLimitBytes: trafficLimitBytes,
		trafficUsedBytes:  trafficUsedBytes,
		expiresAt:         expiresAt,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}, nil
}

func (s *Subscription) ID() uint                  { return s.id }
func (s *Subscription) UserID() uint              { return s.userID }
func (s *Subscription) Status() Status            { return s.status }
func (s *Subscription) ServerID() uint            { return s.serverID }
func (s *Subscription) InboundID() uint           { return s.inboundID }
func (s *Subscription) ClientEmail() string       { return s.clientEmail }
func (s *Subscription) ClientUUID() string        { return s.clientUUID }
func (s *Subscription) TrafficLimitBytes() uint64 { return s.trafficLimitBytes }
func (s *Subscription) TrafficUsedBytes() uint64  { return s.trafficUsedBytes }
func (s *Subscription) ExpiresAt() time.Time      { return s.expiresAt }
func (s *Subscription) CreatedAt() time.Time      { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time      { return s.updatedAt }

// RemainingBytes returns the quota left on the plan, never negative.
// Rotated accounts are provisioned with the remaining quota, not the
// original plan value.
func (s *Subscription) RemainingBytes() uint64 {
	if s.trafficUsedBytes >= s.trafficLimitBytes {
		return 0
	}
	return s.trafficLimitBytes - s.trafficUsedBytes
}

// Rebind rewrites the server/inbound/client reference after a replacement
// account has been created on the alternate server. Only called once the
// remote creation succeeded.
func (s *Subscription) Rebind(serverID, inboundID uint, clientEmail, clientUUID string) error {
	if serverID == 0 {
		return fmt.Errorf("target server ID is required")
	}
	if inboundID == 0 {
		return fmt.Errorf("target inbound ID is required")
	}
	if clientEmail == "" {
		return fmt.Errorf("target client email is required")
	}
	s.serverID = serverID
	s.inboundID = inboundID
	s.clientEmail = clientEmail
	s.clientUUID = clientUUID
	s.updatedAt = time.Now()
	return nil
}
