package fleet

import (
	"context"
	"io"
	"log/slog"
	"time"

	"averon/internal/application/fleet/dto"
	"averon/internal/domain/panel"
	"averon/internal/domain/server"
	"averon/internal/domain/subscription"
	"averon/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockServerRepository struct {
	CreateFunc     func(ctx context.Context, srv *server.Server) error
	GetByIDFunc    func(ctx context.Context, id uint) (*server.Server, error)
	ListFunc       func(ctx context.Context) ([]*server.Server, error)
	ListActiveFunc func(ctx context.Context) ([]*server.Server, error)
	UpdateFunc     func(ctx context.Context, srv *server.Server) error
}

func (m *mockServerRepository) Create(ctx context.Context, srv *server.Server) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, srv)
	}
	return nil
}

func (m *mockServerRepository) GetByID(ctx context.Context, id uint) (*server.Server, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockServerRepository) List(ctx context.Context) ([]*server.Server, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockServerRepository) ListActive(ctx context.Context) ([]*server.Server, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockServerRepository) Update(ctx context.Context, srv *server.Server) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, srv)
	}
	return nil
}

type mockHealthRecordRepository struct {
	CreateFunc       func(ctx context.Context, record *server.HealthRecord) error
	ListByServerFunc func(ctx context.Context, serverID uint, limit int) ([]*server.HealthRecord, error)
}

func (m *mockHealthRecordRepository) Create(ctx context.Context, record *server.HealthRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	return nil
}

func (m *mockHealthRecordRepository) ListByServer(ctx context.Context, serverID uint, limit int) ([]*server.HealthRecord, error) {
	if m.ListByServerFunc != nil {
		return m.ListByServerFunc(ctx, serverID, limit)
	}
	return nil, nil
}

type mockInboundRepository struct {
	UpsertFunc              func(ctx context.Context, inbound *panel.Inbound) error
	GetByIDFunc             func(ctx context.Context, id uint) (*panel.Inbound, error)
	GetByServerAndPortFunc  func(ctx context.Context, serverID uint, port uint16) (*panel.Inbound, error)
	ListByServerFunc        func(ctx context.Context, serverID uint) ([]*panel.Inbound, error)
	ListEnabledByServerFunc func(ctx context.Context, serverID uint) ([]*panel.Inbound, error)
}

func (m *mockInboundRepository) Upsert(ctx context.Context, inbound *panel.Inbound) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, inbound)
	}
	return nil
}

func (m *mockInboundRepository) GetByID(ctx context.Context, id uint) (*panel.Inbound, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockInboundRepository) GetByServerAndPort(ctx context.Context, serverID uint, port uint16) (*panel.Inbound, error) {
	if m.GetByServerAndPortFunc != nil {
		return m.GetByServerAndPortFunc(ctx, serverID, port)
	}
	return nil, nil
}

func (m *mockInboundRepository) ListByServer(ctx context.Context, serverID uint) ([]*panel.Inbound, error) {
	if m.ListByServerFunc != nil {
		return m.ListByServerFunc(ctx, serverID)
	}
	return nil, nil
}

func (m *mockInboundRepository) ListEnabledByServer(ctx context.Context, serverID uint) ([]*panel.Inbound, error) {
	if m.ListEnabledByServerFunc != nil {
		return m.ListEnabledByServerFunc(ctx, serverID)
	}
	return nil, nil
}

type mockClientAccountRepository struct {
	UpsertFunc               func(ctx context.Context, account *panel.ClientAccount) error
	GetByInboundAndEmailFunc func(ctx context.Context, inboundID uint, email string) (*panel.ClientAccount, error)
	ListByInboundFunc        func(ctx context.Context, inboundID uint) ([]*panel.ClientAccount, error)
	CountByServerFunc        func(ctx context.Context, serverID uint) (int64, error)
}

func (m *mockClientAccountRepository) Upsert(ctx context.Context, account *panel.ClientAccount) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, account)
	}
	return nil
}

func (m *mockClientAccountRepository) GetByInboundAndEmail(ctx context.Context, inboundID uint, email string) (*panel.ClientAccount, error) {
	if m.GetByInboundAndEmailFunc != nil {
		return m.GetByInboundAndEmailFunc(ctx, inboundID, email)
	}
	return nil, nil
}

func (m *mockClientAccountRepository) ListByInbound(ctx context.Context, inboundID uint) ([]*panel.ClientAccount, error) {
	if m.ListByInboundFunc != nil {
		return m.ListByInboundFunc(ctx, inboundID)
	}
	return nil, nil
}

func (m *mockClientAccountRepository) CountByServer(ctx context.Context, serverID uint) (int64, error) {
	if m.CountByServerFunc != nil {
		return m.CountByServerFunc(ctx, serverID)
	}
	return 0, nil
}

type mockSubscriptionRepository struct {
	GetByIDFunc            func(ctx context.Context, id uint) (*subscription.Subscription, error)
	ListActiveByServerFunc func(ctx context.Context, serverID uint) ([]*subscription.Subscription, error)
	UpdateBindingFunc      func(ctx context.Context, sub *subscription.Subscription) error
}

func (m *mockSubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) ListActiveByServer(ctx context.Context, serverID uint) ([]*subscription.Subscription, error) {
	if m.ListActiveByServerFunc != nil {
		return m.ListActiveByServerFunc(ctx, serverID)
	}
	return nil, nil
}

func (m *mockSubscriptionRepository) UpdateBinding(ctx context.Context, sub *subscription.Subscription) error {
	if m.UpdateBindingFunc != nil {
		return m.UpdateBindingFunc(ctx, sub)
	}
	return nil
}

type mockRotationLogRepository struct {
	CreateFunc             func(ctx context.Context, log *subscription.RotationLog) error
	ListBySubscriptionFunc func(ctx context.Context, subscriptionID uint, limit int) ([]*subscription.RotationLog, error)
}

func (m *mockRotationLogRepository) Create(ctx context.Context, log *subscription.RotationLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	return nil
}

func (m *mockRotationLogRepository) ListBySubscription(ctx context.Context, subscriptionID uint, limit int) ([]*subscription.RotationLog, error) {
	if m.ListBySubscriptionFunc != nil {
		return m.ListBySubscriptionFunc(ctx, subscriptionID, limit)
	}
	return nil, nil
}

type mockPanelClient struct {
	AuthenticateFunc       func(ctx context.Context) error
	GetStatusFunc          func(ctx context.Context) (*dto.ServerStatus, error)
	ListInboundsFunc       func(ctx context.Context) ([]dto.Inbound, error)
	ListClientStatsFunc    func(ctx context.Context, inboundID int) ([]dto.ClientStat, error)
	AddClientFunc          func(ctx context.Context, inboundID int, email, uuid string, totalBytes uint64, expiresAt time.Time) error
	RemoveClientFunc       func(ctx context.Context, inboundID int, email string) error
	UpdateClientFunc       func(ctx context.Context, inboundID int, email string, settings dto.ClientSettings) error
	ResetClientTrafficFunc func(ctx context.Context, inboundID int, email string) error
	CloseFunc              func()

	closed int
}

func (m *mockPanelClient) Authenticate(ctx context.Context) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx)
	}
	return nil
}

func (m *mockPanelClient) GetStatus(ctx context.Context) (*dto.ServerStatus, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx)
	}
	return &dto.ServerStatus{}, nil
}

func (m *mockPanelClient) ListInbounds(ctx context.Context) ([]dto.Inbound, error) {
	if m.ListInboundsFunc != nil {
		return m.ListInboundsFunc(ctx)
	}
	return nil, nil
}

func (m *mockPanelClient) ListClientStats(ctx context.Context, inboundID int) ([]dto.ClientStat, error) {
	if m.ListClientStatsFunc != nil {
		return m.ListClientStatsFunc(ctx, inboundID)
	}
	return nil, nil
}

func (m *mockPanelClient) AddClient(ctx context.Context, inboundID int, email, uuid string, totalBytes uint64, expiresAt time.Time) error {
	if m.AddClientFunc != nil {
		return m.AddClientFunc(ctx, inboundID, email, uuid, totalBytes, expiresAt)
	}
	return nil
}

func (m *mockPanelClient) RemoveClient(ctx context.Context, inboundID int, email string) error {
	if m.RemoveClientFunc != nil {
		return m.RemoveClientFunc(ctx, inboundID, email)
	}
	return nil
}

func (m *mockPanelClient) UpdateClient(ctx context.Context, inboundID int, email string, settings dto.ClientSettings) error {
	if m.UpdateClientFunc != nil {
		return m.UpdateClientFunc(ctx, inboundID, email, settings)
	}
	return nil
}

func (m *mockPanelClient) ResetClientTraffic(ctx context.Context, inboundID int, email string) error {
	if m.ResetClientTrafficFunc != nil {
		return m.ResetClientTrafficFunc(ctx, inboundID, email)
	}
	return nil
}

func (m *mockPanelClient) Close() {
	m.closed++
	if m.CloseFunc != nil {
		m.CloseFunc()
	}
}

type mockNotifier struct {
	OfflineCalls     []uint
	RotationOutcomes []*subscription.RotationLog
	NoAlternateCalls []uint
}

func (m *mockNotifier) NotifyServerOffline(ctx context.Context, srv *server.Server) {
	m.OfflineCalls = append(m.OfflineCalls, srv.ID())
}

func (m *mockNotifier) NotifyRotationOutcome(ctx context.Context, log *subscription.RotationLog) {
	m.RotationOutcomes = append(m.RotationOutcomes, log)
}

func (m *mockNotifier) NotifyNoAlternate(ctx context.Context, srv *server.Server) {
	m.NoAlternateCalls = append(m.NoAlternateCalls, srv.ID())
}

type mockLease struct {
	AcquireFunc func(ctx context.Context, serverID uint) (bool, error)
	ReleaseFunc func(ctx context.Context, serverID uint) error
}

func (m *mockLease) Acquire(ctx context.Context, serverID uint) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, serverID)
	}
	return true, nil
}

func (m *mockLease) Release(ctx context.Context, serverID uint) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, serverID)
	}
	return nil
}

type mockRotator struct {
	RotateAwayFromFunc func(ctx context.Context, unhealthy *server.Server) (*RotationSummary, error)
	Calls              []uint
}

func (m *mockRotator) RotateAwayFrom(ctx context.Context, unhealthy *server.Server) (*RotationSummary, error) {
	m.Calls = append(m.Calls, unhealthy.ID())
	if m.RotateAwayFromFunc != nil {
		return m.RotateAwayFromFunc(ctx, unhealthy)
	}
	return &RotationSummary{}, nil
}

func reconstructTestServer(id uint, name string, maxUsers, currentUsers uint, healthy bool) *server.Server {
	now := time.Now()
	var lastSync *time.Time
	srv, err := server.ReconstructServer(
		id, name, "http://"+name+".example.com", 2053, "admin", "secret",
		maxUsers, currentUsers, true, false, lastSync,
		healthy, 0, 0, 0, now, now,
	)
	if err != nil {
		panic(err)
	}
	return srv
}

func reconstructTestSubscription(id, serverID, inboundID uint, email, uuid string) *subscription.Subscription {
	now := time.Now()
	sub, err := subscription.ReconstructSubscription(
		id, 42, subscription.StatusActive, serverID, inboundID,
		email, uuid, 100<<30, 40<<30, now.Add(30*24*time.Hour), now, now,
	)
	if err != nil {
		panic(err)
	}
	return sub
}

func reconstructTestInbound(id, serverID uint, remoteID int, port uint16, protocol string) *panel.Inbound {
	now := time.Now()
	ib, err := panel.ReconstructInbound(
		id, serverID, remoteID, port, protocol, "tag-"+protocol, "", "{}", true, now, now, now,
	)
	if err != nil {
		panic(err)
	}
	return ib
}
