// Package handlers exposes the engine's trigger and inspection API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"averon/internal/application/fleet"
	"averon/internal/domain/server"
	"averon/internal/shared/logger"
	"averon/internal/shared/utils"
)

// FleetHandler triggers sync, health and rotation passes on demand. The
// scheduler drives the same code paths; this exists for operators and tests.
type FleetHandler struct {
	coordinator *fleet.SyncCoordinator
	monitor     *fleet.HealthMonitor
	rotation    *fleet.RotationEngine
	serverRepo  server.Repository
	logger      logger.Interface
}

// NewFleetHandler creates a new FleetHandler.
func NewFleetHandler(
	coordinator *fleet.SyncCoordinator,
	monitor *fleet.HealthMonitor,
	rotation *fleet.RotationEngine,
	serverRepo server.Repository,
	log logger.Interface,
) *FleetHandler {
	return &FleetHandler{
		coordinator: coordinator,
		monitor:     monitor,
		rotation:    rotation,
		serverRepo:  serverRepo,
		logger:      log,
	}
}

// TriggerSyncAll handles POST /api/fleet/sync
func (h *FleetHandler) TriggerSyncAll(c *gin.Context) {
	summary, err := h.coordinator.SyncAll(c.Request.Context())
	if err != nil {
		h.logger.Errorw("manual sync pass failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "sync pass finished", summary)
}

// TriggerSyncServer handles POST /api/fleet/sync/:id
func (h *FleetHandler) TriggerSyncServer(c *gin.Context) {
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

	if err := h.coordinator.SyncServer(c.Request.Context(), srv); err != nil {
		if errors.Is(err, fleet.ErrLeaseHeld) {
			utils.ErrorResponse(c, http.StatusConflict, "sync already running for this server")
			return
		}
		h.logger.Errorw("manual server sync failed", "server_id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "server synced", gin.H{"server_id": id})
}

// TriggerHealthPass handles POST /api/fleet/health
func (h *FleetHandler) TriggerHealthPass(c *gin.Context) {
	summary, err := h.monitor.RunHealthPass(c.Request.Context())
	if err != nil {
		h.logger.Errorw("manual health pass failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "health pass finished", summary)
}

// TriggerRotation handles POST /api/fleet/rotate/:id
// Forces failover for a server regardless of its recorded health, e.g.
// before planned maintenance.
func (h *FleetHandler) TriggerRotation(c *gin.Context) {
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

	summary, err := h.rotation.RotateAwayFrom(c.Request.Context(), srv)
	if err != nil {
		h.logger.Errorw("manual rotation failed", "server_id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "rotation finished", summary)
}
