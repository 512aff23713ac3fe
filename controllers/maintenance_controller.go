package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/middleware"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type openAlertPayload struct {
	RoomID     uint   `json:"room_id" binding:"required"`
	Issue      string `json:"issue" binding:"required"`
	ReportedBy string `json:"reported_by"`
}

type alertStatusPayload struct {
	Status string `json:"status" binding:"required,alert_status"`
}

type MaintenanceController struct {
	MaintenanceSvc *services.MaintenanceService
}

func NewMaintenanceController(svc *services.MaintenanceService) *MaintenanceController {
	return &MaintenanceController{MaintenanceSvc: svc}
}

// GET /api/maintenance/alerts?status=
func (mc *MaintenanceController) GetAlerts(c *gin.Context) {
	list, err := mc.MaintenanceSvc.List(c.Request.Context(), propertyID(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// POST /api/maintenance/alerts
func (mc *MaintenanceController) OpenAlert(c *gin.Context) {
	var payload openAlertPayload
	if !bindJSON(c, &payload) {
		return
	}
	if payload.ReportedBy == "" {
		payload.ReportedBy = c.GetString(middleware.StaffUsernameKey)
	}
	alert, err := mc.MaintenanceSvc.Open(c.Request.Context(), propertyID(c), services.AlertInput{
		RoomID:     payload.RoomID,
		Issue:      payload.Issue,
		ReportedBy: payload.ReportedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, alert)
}

// PATCH /api/maintenance/alerts/:id
func (mc *MaintenanceController) UpdateAlert(c *gin.Context) {
	id, ok := pathID(c, "alert")
	if !ok {
		return
	}
	var payload alertStatusPayload
	if !bindJSON(c, &payload) {
		return
	}
	alert, err := mc.MaintenanceSvc.SetStatus(c.Request.Context(), propertyID(c), id, payload.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, alert)
}
