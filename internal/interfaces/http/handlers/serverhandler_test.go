package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"averon/internal/domain/server"
	"averon/internal/domain/subscription"
	apperrors "averon/internal/shared/errors"
	"averon/internal/shared/logger"
)

type stubServerRepo struct {
	servers []*server.Server
	err     error
}

func (s *stubServerRepo) Create(ctx context.Context, srv *server.Server) error { return nil }
func (s *stubServerRepo) GetByID(ctx context.Context, id uint) (*server.Server, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, srv := range s.servers {
		if srv.ID() == id {
			return srv, nil
		}
	}
	return nil, apperrors.NewNotFoundError("server not found")
}
func (s *stubServerRepo) List(ctx context.Context) ([]*server.Server, error) {
	return s.servers, s.err
}
func (s *stubServerRepo) ListActive(ctx context.Context) ([]*server.Server, error) {
	return s.servers, s.err
}
func (s *stubServerRepo) Update(ctx context.Context, srv *server.Server) error { return nil }

type stubHealthRecordRepo struct {
	records []*server.HealthRecord
}

func (s *stubHealthRecordRepo) Create(ctx context.Context, r *server.HealthRecord) error { return nil }
func (s *stubHealthRecordRepo) ListByServer(ctx context.Context, serverID uint, limit int) ([]*server.HealthRecord, error) {
	return s.records, nil
}

type stubRotationLogRepo struct {
	logs []*subscription.RotationLog
}

func (s *stubRotationLogRepo) Create(ctx context.Context, l *subscription.RotationLog) error {
	return nil
}
func (s *stubRotationLogRepo) ListBySubscription(ctx context.Context, subscriptionID uint, limit int) ([]*subscription.RotationLog, error) {
	return s.logs, nil
}

func testHandlerLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testServer(t *testing.T, id uint, name string) *server.Server {
	t.Helper()
	now := time.Now()
	srv, err := server.ReconstructServer(
		id, name, "http://"+name+".example.com", 2053, "admin", "secret",
		100, 40, true, true, &now, true, 0, 10, 20, now, now,
	)
	require.NoError(t, err)
	return srv
}

func setupRouter(h *ServerHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/servers", h.ListServers)
	r.GET("/api/servers/:id", h.GetServer)
	r.GET("/api/servers/:id/health", h.GetServerHealth)
	r.GET("/api/subscriptions/:id/rotations", h.GetSubscriptionRotations)
	return r
}

func TestServerHandler_ListServers(t *testing.T) {
	repo := &stubServerRepo{servers: []*server.Server{
		testServer(t, 1, "fra-1"),
		testServer(t, 2, "ams-1"),
	}}
	h := NewServerHandler(repo, &stubHealthRecordRepo{}, &stubRotationLogRepo{}, testHandlerLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/servers", nil)
	setupRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			ID        uint    `json:"id"`
			Name      string  `json:"name"`
			LoadRatio float64 `json:"load_ratio"`
			IsHealthy bool    `json:"is_healthy"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "fra-1", body.Data[0].Name)
	assert.InDelta(t, 0.4, body.Data[0].LoadRatio, 0.001)
}

func TestServerHandler_GetServer_NotFound(t *testing.T) {
	h := NewServerHandler(&stubServerRepo{}, &stubHealthRecordRepo{}, &stubRotationLogRepo{}, testHandlerLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/servers/99", nil)
	setupRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestServerHandler_GetServer_InvalidID(t *testing.T) {
	h := NewServerHandler(&stubServerRepo{}, &stubHealthRecordRepo{}, &stubRotationLogRepo{}, testHandlerLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/servers/abc", nil)
	setupRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServerHandler_GetServerHealth(t *testing.T) {
	record, err := server.NewHealthRecord(1, 42.5, 60, 30, 3600, 15, time.Now())
	require.NoError(t, err)

	h := NewServerHandler(&stubServerRepo{}, &stubHealthRecordRepo{records: []*server.HealthRecord{record}},
		&stubRotationLogRepo{}, testHandlerLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/servers/1/health", nil)
	setupRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cpu_percent":42.5`)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestServerHandler_GetSubscriptionRotations(t *testing.T) {
	to := uint(3)
	log, err := subscription.NewRotationLog(10, 1, &to, subscription.RotationSuccess, "")
	require.NoError(t, err)

	h := NewServerHandler(&stubServerRepo{}, &stubHealthRecordRepo{},
		&stubRotationLogRepo{logs: []*subscription.RotationLog{log}}, testHandlerLogger())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/subscriptions/10/rotations", nil)
	setupRouter(h).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"success"`)
	assert.Contains(t, w.Body.String(), `"to_server_id":3`)
}
