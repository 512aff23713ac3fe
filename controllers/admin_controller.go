package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-ops/jobs"
	"hotel-ops/utils"
)

type AdminController struct {
	Sweeper *jobs.Sweeper
}

func NewAdminController(sweeper *jobs.Sweeper) *AdminController {
	return &AdminController{Sweeper: sweeper}
}

// POST /api/admin/sweep runs the check-in/check-out sweep across all
// properties right now.
func (ac *AdminController) RunSweep(c *gin.Context) {
	res, err := ac.Sweeper.RunOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, jobs.ErrSweepBusy) {
			utils.JSONError(c, http.StatusConflict, "error.sweepBusy", err.Error(), nil)
			return
		}
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}
