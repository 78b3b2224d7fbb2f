package subscription

import (
	"fmt"
	"time"
)

// RotationOutcome is the result of one migration attempt.
type RotationOutcome string

const (
	RotationSuccess RotationOutcome = "success"
	RotationFailed  RotationOutcome = "failed"
	RotationSkipped RotationOutcome = "skipped"
)

// RotationLog is an immutable record of one attempt to migrate a
// subscription away from an unhealthy server.
type RotationLog struct {
	id             uint
	subscriptionID uint
	fromServerID   uint
	toServerID     *uint
	outcome        RotationOutcome
	errorMessage   string
	createdAt      time.Time
}

// NewRotationLog records a migration attempt. toServerID is nil when no
// alternate was available.
func NewRotationLog(subscriptionID, fromServerID uint, toServerID *uint, outcome RotationOutcome, errorMessage string) (*RotationLog, error) {
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if fromServerID == 0 {
		return nil, fmt.Errorf("source server ID is required")
	}
	switch outcome {
	case RotationSuccess, RotationFailed, RotationSkipped:
	default:
		return nil, fmt.Errorf("invalid rotation outcome: %s", outcome)
	}
	return &RotationLog{
		subscriptionID: subscriptionID,
		fromServerID:   fromServerID,
		toServerID:     toServerID,
		outcome:        outcome,
		errorMessage:   errorMessage,
		createdAt:      time.Now(),
	}, nil
}

// ReconstructRotationLog reconstructs a rotation log from persistence
func ReconstructRotationLog(
	id, subscriptionID, fromServerID uint,
	toServerID *uint,
	outcome RotationOutcome,
	errorMessage string,
	createdAt time.Time,
) (*RotationLog, error) {
	if id == 0 {
		return nil, fmt.Errorf("rotation log ID cannot be zero")
	}
	return &RotationLog{
		id:             id,
		subscriptionID: subscriptionID,
		fromServerID:   fromServerID,
		toServerID:     toServerID,
		outcome:        outcome,
		errorMessage:   errorMessage,
		createdAt:      createdAt,
	}, nil
}

func (l *RotationLog) ID() uint                 { return l.id }
func (l *RotationLog) SubscriptionID() uint     { return l.subscriptionID }
func (l *RotationLog) FromServerID() uint       { return l.fromServerID }
func (l *RotationLog) ToServerID() *uint        { return l.toServerID }
func (l *RotationLog) Outcome() RotationOutcome { return l.outcome }
func (l *RotationLog) ErrorMessage() string     { return l.errorMessage }
func (l *RotationLog) CreatedAt() time.Time     { return l.createdAt }

// SetID assigns the ID after persistence. It can only be set once.
func (l *RotationLog) SetID(id uint) error {
	if l.id != 0 {
		return fmt.Errorf("rotation log ID already set")
	}
	if id == 0 {
		return fmt.Errorf("rotation log ID cannot be zero")
	}
	l.id = id
	return nil
}
