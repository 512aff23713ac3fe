package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/services"
	"hotel-ops/utils"
)

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	AuthSvc *services.AuthService
}

func NewAuthController(svc *services.AuthService) *AuthController {
	return &AuthController{AuthSvc: svc}
}

// Login checks credentials and returns the staff profile so a client can
// decide which screens to show. Later requests send the same credentials as
// HTTP basic auth.
func (ac *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload) {
		return
	}

	staff, err := ac.AuthSvc.Authenticate(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.JSONError(c, http.StatusUnauthorized, "error.invalidCredentials", "invalid credentials", nil)
			return
		}
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, staff)
}
