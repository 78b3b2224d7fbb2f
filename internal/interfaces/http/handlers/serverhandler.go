package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"averon/internal/domain/server"
	"averon/internal/domain/subscription"
	"averon/internal/shared/logger"
	"averon/internal/shared/utils"
)

// ServerHandler serves read-only fleet state: server inventory, recent
// health records and rotation history.
type ServerHandler struct {
	serverRepo       server.Repository
	healthRecordRepo server.HealthRecordRepository
	rotationLogRepo  subscription.RotationLogRepository
	logger           logger.Interface
}

// NewServerHandler creates a new ServerHandler.
func NewServerHandler(
	serverRepo server.Repository,
	healthRecordRepo server.HealthRecordRepository,
	rotationLogRepo subscription.RotationLogRepository,
	log logger.Interface,
) *ServerHandler {
	return &ServerHandler{
		serverRepo:       serverRepo,
		healthRecordRepo: healthRecordRepo,
		rotationLogRepo:  rotationLogRepo,
		logger:           log,
	}
}

type serverResponse struct {
	ID                  uint       `json:"id"`
	Name                string     `json:"name"`
	MaxUsers            uint       `json:"max_users"`
	CurrentUsers        uint       `json:"current_users"`
	LoadRatio           float64    `json:"load_ratio"`
	IsActive            bool       `json:"is_active"`
	IsSynced            bool       `json:"is_synced"`
	LastSyncAt          *time.Time `json:"last_sync_at,omitempty"`
	IsHealthy           bool       `json:"is_healthy"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	TrafficUp           uint64     `json:"traffic_up"`
	TrafficDown         uint64     `json:"traffic_down"`
}

func toServerResponse(srv *server.Server) serverResponse {
	return serverResponse{
		ID:                  srv.ID(),
		Name:                srv.Name(),
		MaxUsers:            srv.MaxUsers(),
		CurrentUsers:        srv.CurrentUsers(),
		LoadRatio:           srv.LoadRatio(),
		IsActive:            srv.IsActive(),
		IsSynced:            srv.IsSynced(),
		LastSyncAt:          srv.LastSyncAt(),
		IsHealthy:           srv.IsHealthy(),
		ConsecutiveFailures: srv.ConsecutiveFailures(),
		TrafficUp:           srv.TrafficUp(),
		TrafficDown:         srv.TrafficDown(),
	}
}

// ListServers handles GET /api/servers
func (h *ServerHandler) ListServers(c *gin.Context) {
	servers, err := h.serverRepo.List(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list servers", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]serverResponse, 0, len(servers))
	for _, srv := range servers {
		items = append(items, toServerResponse(srv))
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

// GetServer handles GET /api/servers/:id
func (h *ServerHandler) GetServer(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "server")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	srv, err := h.serverRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toServerResponse(srv))
}

type healthRecordResponse struct {
	CPUPercent        float64   `json:"cpu_percent"`
	MemoryPercent     float64   `json:"memory_percent"`
	DiskPercent       float64   `json:"disk_percent"`
	UptimeSeconds     uint64    `json:"uptime_seconds"`
	ActiveConnections uint      `json:"active_connections"`
	Status            string    `json:"status"`
	CheckedAt         time.Time `json:"checked_at"`
}

// GetServerHealth handles GET /api/servers/:id/health
func (h *ServerHandler) GetServerHealth(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "server")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	records, err := h.healthRecordRepo.ListByServer(c.Request.Context(), id, 50)
	if err != nil {
		h.logger.Errorw("failed to list health records", "server_id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]healthRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, healthRecordResponse{
			CPUPercent:        r.CPUPercent(),
			MemoryPercent:     r.MemoryPercent(),
			DiskPercent:       r.DiskPercent(),
			UptimeSeconds:     r.UptimeSeconds(),
			ActiveConnections: r.ActiveConnections(),
			Status:            string(r.Status()),
			CheckedAt:         r.CheckedAt(),
		})
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}

type rotationLogResponse struct {
	SubscriptionID uint      `json:"subscription_id"`
	FromServerID   uint      `json:"from_server_id"`
	ToServerID     *uint     `json:"to_server_id,omitempty"`
	Outcome        string    `json:"outcome"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// GetSubscriptionRotations handles GET /api/subscriptions/:id/rotations
func (h *ServerHandler) GetSubscriptionRotations(c *gin.Context) {
	id, err := utils.ParseUintParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	logs, err := h.rotationLogRepo.ListBySubscription(c.Request.Context(), id, 50)
	if err != nil {
		h.logger.Errorw("failed to list rotation logs", "subscription_id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	items := make([]rotationLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, rotationLogResponse{
			SubscriptionID: l.SubscriptionID(),
			FromServerID:   l.FromServerID(),
			ToServerID:     l.ToServerID(),
			Outcome:        string(l.Outcome()),
			ErrorMessage:   l.ErrorMessage(),
			CreatedAt:      l.CreatedAt(),
		})
	}
	utils.SuccessResponse(c, http.StatusOK, "", items)
}
