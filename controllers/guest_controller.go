package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/services"
	"hotel-ops/utils"
)

// --- Controller ---
type GuestController struct {
	GuestSvc *services.GuestService
}

// NewGuestController Constructor
func NewGuestController(svc *services.GuestService) *GuestController {
	return &GuestController{
		GuestSvc: svc,
	}
}

// GET /api/guests?search=
func (gc *GuestController) GetGuests(c *gin.Context) {
	guests, err := gc.GuestSvc.List(c.Request.Context(), propertyID(c), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guests)
}

// GET /api/guests/:id
func (gc *GuestController) GetGuestByID(c *gin.Context) {
	id, ok := pathID(c, "guest")
	if !ok {
		return
	}
	guest, err := gc.GuestSvc.Get(c.Request.Context(), propertyID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guest)
}

// PUT /api/guests/:id
func (gc *GuestController) UpdateGuest(c *gin.Context) {
	id, ok := pathID(c, "guest")
	if !ok {
		return
	}
	var req GuestPayload
	if !bindJSON(c, &req) {
		return
	}
	guest, err := gc.GuestSvc.Update(c.Request.Context(), propertyID(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guest)
}
