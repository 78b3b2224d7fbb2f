package fleet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"averon/internal/application/fleet/dto"
	"averon/internal/domain/server"
	apperrors "averon/internal/shared/errors"
)

func TestHealthMonitor_CheckServer_HealthyPoll(t *testing.T) {
	srv := reconstructTestServer(1, "fra-1", 100, 0, true)
	client := &mockPanelClient{
		GetStatusFunc: func(ctx context.Context) (*dto.ServerStatus, error) {
			return &dto.ServerStatus{
				CPUPercent:    35,
				Memory:        dto.ResourceUsage{Current: 4, Total: 16},
				Disk:          dto.ResourceUsage{Current: 100, Total: 500},
				UptimeSeconds: 86400,
				TCPCount:      120,
				UDPCount:      30,
			}, nil
		},
	}

	var recorded *server.HealthRecord
	recordRepo := &mockHealthRecordRepository{
		CreateFunc: func(ctx context.Context, r *server.HealthRecord) error {
			recorded = r
			return nil
		},
	}
	rotator := &mockRotator{}

	m := NewHealthMonitor(&mockServerRepository{}, recordRepo,
		func(*server.Server) (PanelClient, error) { return client, nil },
		rotator, &mockNotifier{}, 1, testLogger())

	record, err := m.CheckServer(context.Background(), srv)
	require.NoError(t, err)
	require.NotNil(t, recorded)

	assert.Equal(t, server.HealthStatusHealthy, record.Status())
	assert.Equal(t, uint(150), record.ActiveConnections())
	assert.True(t, srv.IsHealthy())
	assert.Equal(t, 0, srv.ConsecutiveFailures())
	assert.Empty(t, rotator.Calls)
	assert.Equal(t, 1, client.closed)
}

func TestHealthMonitor_CheckServer_DegradedPoll(t *testing.T) {
	srv := reconstructTestServer(1, "fra-1", 100, 0, true)
	client := &mockPanelClient{
		GetStatusFunc: func(ctx context.Context) (*dto.ServerStatus, error) {
			return &dto.ServerStatus{
				CPUPercent: 97,
				Memory:     dto.ResourceUsage{Current: 1, Total: 16},
				Disk:       dto.ResourceUsage{Current: 1, Total: 500},
			}, nil
		},
	}
	rotator := &mockRotator{}

	m := NewHealthMonitor(&mockServerRepository{}, &mockHealthRecordRepository{},
		func(*server.Server) (PanelClient, error) { return client, nil },
		rotator, &mockNotifier{}, 1, testLogger())

	record, err := m.CheckServer(context.Background(), srv)
	require.NoError(t, err)

	assert.Equal(t, server.HealthStatusCritical, record.Status())
	assert.True(t, srv.IsHealthy(), "degraded resources do not make the server unhealthy")
	assert.Empty(t, rotator.Calls, "degraded resources never trigger rotation")
}

func TestHealthMonitor_CheckServer_RotatesOncePerTransition(t *testing.T) {
	srv := reconstructTestServer(1, "fra-1", 100, 0, true)
	client := &mockPanelClient{
		GetStatusFunc: func(ctx context.Context) (*dto.ServerStatus, error) {
			return nil, apperrors.NewConnectionError("connection refused")
		},
	}

	var records []*server.HealthRecord
	recordRepo := &mockHealthRecordRepository{
		CreateFunc: func(ctx context.Context, r *server.HealthRecord) error {
			records = append(records, r)
			return nil
		},
	}
	rotator := &mockRotator{}
	notifier := &mockNotifier{}

	m := NewHealthMonitor(&mockServerRepository{}, recordRepo,
		func(*server.Server) (PanelClient, error) { return client, nil },
		rotator, notifier, 1, testLogger())

	for i := 0; i < 3; i++ {
		record, err := m.CheckServer(context.Background(), srv)
		require.NoError(t, err)
		assert.Equal(t, server.HealthStatusOffline, record.Status())
	}

	assert.Len(t, records, 3, "every poll of a down server is recorded")
	assert.Equal(t, []uint{1}, rotator.Calls, "rotation fires only on the transition")
	assert.Equal(t, []uint{1}, notifier.OfflineCalls)
	assert.False(t, srv.IsHealthy())
	assert.Equal(t, 3, srv.ConsecutiveFailures())
}

func TestHealthMonitor_CheckServer_ThresholdDelaysTransition(t *testing.T) {
	srv := reconstructTestServer(1, "fra-1", 100, 0, true)
	client := &mockPanelClient{
		GetStatusFunc: func(ctx context.Context) (*dto.ServerStatus, error) {
			return nil, apperrors.NewConnectionError("connection refused")
		},
	}
	rotator := &mockRotator{}

	m := NewHealthMonitor(&mockServerRepository{}, &mockHealthRecordRepository{},
		func(*server.Server) (PanelClient, error) { return client, nil },
		rotator, &mockNotifier{}, 3, testLogger())

	for i := 0; i < 2; i++ {
		_, err := m.CheckServer(context.Background(), srv)
		require.NoError(t, err)
		assert.True(t, srv.IsHealthy(), "below the threshold the server stays healthy")
	}
	assert.Empty(t, rotator.Calls)

	_, err := m.CheckServer(context.Background(), srv)
	require.NoError(t, err)
	assert.False(t, srv.IsHealthy())
	assert.Equal(t, []uint{1}, rotator.Calls)
}

func TestHealthMonitor_CheckServer_RecoveryResetsStreak(t *testing.T) {
	srv := reconstructTestServer(1, "fra-1", 100, 0, true)
	failing := true
	client := &mockPanelClient{
		GetStatusFunc: func(ctx context.Context) (*dto.ServerStatus, error) {
			if failing {
				return nil, apperrors.NewConnectionError("connection refused")
			}
			return &dto.ServerStatus{CPUPercent: 10}, nil
		},
	}
	rotator := &mockRotator{}

	m := NewHealthMonitor(&mockServerRepository{}, &mockHealthRecordRepository{},
		func(*server.Server) (PanelClient, error) { return client, nil },
		rotator, &mockNotifier{}, 3, testLogger())

	for i := 0; i < 2; i++ {
		_, err := m.CheckServer(context.Background(), srv)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, srv.ConsecutiveFailures())

	failing = false
	_, err := m.CheckServer(context.Background(), srv)
	require.NoError(t, err)
	assert.Equal(t, 0, srv.ConsecutiveFailures())
	assert.True(t, srv.IsHealthy())
	assert.Empty(t, rotator.Calls)
}

func TestHealthMonitor_RunHealthPass(t *testing.T) {
	servers := []*server.Server{
		reconstructTestServer(1, "fra-1", 100, 0, true),
		reconstructTestServer(2, "ams-1", 100, 0, true),
		reconstructTestServer(3, "nyc-1", 100, 0, true),
	}
	serverRepo := &mockServerRepository{
		ListActiveFunc: func(ctx context.Context) ([]*server.Server, error) { return servers, nil },
	}

	connect := func(srv *server.Server) (PanelClient, error) {
		switch srv.ID() {
		case 2:
			return &mockPanelClient{
				GetStatusFunc: func(ctx context.Context) (*dto.ServerStatus, error) {
					return nil, apperrors.NewConnectionError("connection refused")
				},
			}, nil
		case 3:
			return &mockPanelClient{
				GetStatusFunc: func(ctx context.Context) (*dto.ServerStatus, error) {
					return &dto.ServerStatus{CPUPercent: 85}, nil
				},
			}, nil
		default:
			return &mockPanelClient{}, nil
		}
	}

	rotator := &mockRotator{}
	m := NewHealthMonitor(serverRepo, &mockHealthRecordRepository{}, connect,
		rotator, &mockNotifier{}, 1, testLogger())

	summary, err := m.RunHealthPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Healthy)
	assert.Equal(t, 1, summary.Degraded)
	assert.Equal(t, 1, summary.Offline)
	assert.Equal(t, 1, summary.Rotations)
	assert.Equal(t, []uint{2}, rotator.Calls)
}
