package controllers

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hotel-ops/middleware"
	"hotel-ops/models"
	"hotel-ops/services"
	"hotel-ops/utils"
)

// RegisterValidators adds the booking_status, room_status and alert_status
// tags to gin's binding engine and reports JSON field names in errors.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
		return models.IsBookingStatus(fl.Field().String())
	})
	_ = v.RegisterValidation("room_status", func(fl validator.FieldLevel) bool {
		return models.IsRoomStatus(fl.Field().String())
	})
	_ = v.RegisterValidation("alert_status", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.AlertStatusOpen, models.AlertStatusInProgress, models.AlertStatusResolved:
			return true
		}
		return false
	})
}

func propertyID(c *gin.Context) uint {
	return c.GetUint(middleware.PropertyIDKey)
}

// pathID parses :id. It writes the 400 itself and returns false on failure.
func pathID(c *gin.Context, entity string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId",
			"invalid "+entity+" id", gin.H{"field": "id"})
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the body and answers 400 with the first failing field.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.Printf("❌ JSON BINDING ERROR (400): %v", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			utils.JSONError(c, http.StatusBadRequest, "error.validation",
				fe.Field()+" failed "+fe.Tag()+" validation", gin.H{"field": fieldPath(fe)})
			return false
		}
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPayload", "Invalid request payload", err.Error())
		return false
	}
	return true
}

// fieldPath turns "createBookingRequest.guest.email" into "guest.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// respondError maps service errors onto status codes and the nested error
// body.
func respondError(c *gin.Context, err error) {
	var (
		verr *services.ValidationError
		nerr *services.NotFoundError
		cerr *services.ConflictError
		terr *services.TransitionError
	)
	switch {
	case errors.As(err, &verr):
		utils.JSONError(c, http.StatusBadRequest, "error.validation", verr.Message, gin.H{"field": verr.Field})
	case errors.As(err, &nerr):
		utils.JSONError(c, http.StatusNotFound, "error.notFound", nerr.Error(), gin.H{"entity": nerr.Entity, "id": nerr.ID})
	case errors.As(err, &cerr):
		utils.JSONError(c, http.StatusConflict, "error.conflict", cerr.Error(), gin.H{
			"room_id":                cerr.RoomID,
			"conflicting_booking_id": cerr.ConflictingBookingID,
		})
	case errors.As(err, &terr):
		utils.JSONError(c, http.StatusConflict, "error.invalidTransition", terr.Error(), gin.H{"from": terr.From, "to": terr.To})
	default:
		log.Printf("❌ %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal server error", nil)
	}
}
