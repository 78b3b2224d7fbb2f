package subscription

import (
	"testing"
	"time"
)

func reconstructTestSubscription(t *testing.T, limit, used uint64) *Subscription {
	t.Helper()
	now := time.Now()
	sub, err := ReconstructSubscription(
		10, 7, StatusActive,
		1, 3, "x@s1", "9b3f2a60-0000-0000-0000-000000000000",
		limit, used,
		now.Add(30*24*time.Hour),
		now, now,
	)
	if err != nil {
		t.Fatalf("ReconstructSubscription() error = %v", err)
	}
	return sub
}

func TestSubscription_RemainingBytes(t *testing.T) {
	tests := []struct {
		name     string
		limit    uint64
		used     uint64
		expected uint64
	}{
		{"unused plan", 1000, 0, 1000},
		{"partially used", 1000, 400, 600},
		{"exactly exhausted", 1000, 1000, 0},
		{"over consumed never negative", 1000, 1500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := reconstructTestSubscription(t, tt.limit, tt.used)
			if got := sub.RemainingBytes(); got != tt.expected {
				t.Errorf("RemainingBytes() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestSubscription_Rebind(t *testing.T) {
	sub := reconstructTestSubscription(t, 1000, 100)

	err := sub.Rebind(2, 5, "sub10-s2@averon.local", "11111111-2222-3333-4444-555555555555")
	if err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}
	if sub.ServerID() != 2 || sub.InboundID() != 5 {
		t.Errorf("binding = (%d, %d), want (2, 5)", sub.ServerID(), sub.InboundID())
	}
	if sub.ClientEmail() != "sub10-s2@averon.local" {
		t.Errorf("ClientEmail() = %q", sub.ClientEmail())
	}
}

func TestSubscription_Rebind_Validation(t *testing.T) {
	tests := []struct {
		name      string
		serverID  uint
		inboundID uint
		email     string
	}{
		{"zero server", 0, 5, "a@b"},
		{"zero inbound", 2, 0, "a@b"},
		{"empty email", 2, 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := reconstructTestSubscription(t, 1000, 100)
			if err := sub.Rebind(tt.serverID, tt.inboundID, tt.email, ""); err == nil {
				t.Error("Rebind() error = nil, want error")
			}
			// Failed rebind leaves the original reference untouched
			if sub.ServerID() != 1 || sub.InboundID() != 3 || sub.ClientEmail() != "x@s1" {
				t.Error("failed Rebind() mutated the binding")
			}
		})
	}
}

func TestStatus_IsActive(t *testing.T) {
	if !StatusActive.IsActive() {
		t.Error("StatusActive.IsActive() = false")
	}
	for _, st := range []Status{StatusSuspended, StatusExpired, StatusCancelled} {
		if st.IsActive() {
			t.Errorf("%s.IsActive() = true", st)
		}
	}
}

func TestNewRotationLog(t *testing.T) {
	to := uint(2)
	log, err := NewRotationLog(10, 1, &to, RotationSuccess, "")
	if err != nil {
		t.Fatalf("NewRotationLog() error = %v", err)
	}
	if log.Outcome() != RotationSuccess {
		t.Errorf("Outcome() = %v, want success", log.Outcome())
	}
	if log.ToServerID() == nil || *log.ToServerID() != 2 {
		t.Errorf("ToServerID() = %v, want 2", log.ToServerID())
	}

	if _, err := NewRotationLog(0, 1, nil, RotationSkipped, ""); err == nil {
		t.Error("NewRotationLog() with zero subscription error = nil, want error")
	}
	if _, err := NewRotationLog(10, 1, nil, RotationOutcome("bogus"), ""); err == nil {
		t.Error("NewRotationLog() with invalid outcome error = nil, want error")
	}
}
