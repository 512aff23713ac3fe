package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/services"
	"hotel-ops/utils"
)

type propertyPayload struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email" binding:"omitempty,email"`
	Timezone string `json:"timezone"`
}

func (p propertyPayload) input() services.PropertyInput {
	return services.PropertyInput{
		Name:     p.Name,
		Address:  p.Address,
		Phone:    p.Phone,
		Email:    p.Email,
		Timezone: p.Timezone,
	}
}

type PropertyController struct {
	PropertySvc *services.PropertyService
}

func NewPropertyController(svc *services.PropertyService) *PropertyController {
	return &PropertyController{PropertySvc: svc}
}

func (pc *PropertyController) GetProperties(c *gin.Context) {
	list, err := pc.PropertySvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (pc *PropertyController) GetProperty(c *gin.Context) {
	id, ok := pathID(c, "property")
	if !ok {
		return
	}
	p, err := pc.PropertySvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, p)
}

func (pc *PropertyController) CreateProperty(c *gin.Context) {
	var payload propertyPayload
	if !bindJSON(c, &payload) {
		return
	}
	p, err := pc.PropertySvc.Create(c.Request.Context(), payload.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, p)
}

func (pc *PropertyController) UpdateProperty(c *gin.Context) {
	id, ok := pathID(c, "property")
	if !ok {
		return
	}
	var payload propertyPayload
	if !bindJSON(c, &payload) {
		return
	}
	p, err := pc.PropertySvc.Update(c.Request.Context(), id, payload.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, p)
}
