package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-ops/repository"
	"hotel-ops/services"
	"hotel-ops/utils"
)

type RoomRequest struct {
	RoomNumber  string  `json:"room_number" binding:"required"`
	Type        string  `json:"type"`
	Floor       int     `json:"floor"`
	Price       float64 `json:"price" binding:"gte=0"`
	Status      string  `json:"status" binding:"omitempty,room_status"`
	Description string  `json:"description"`
}

type RoomStatusRequest struct {
	Status string `json:"status" binding:"required,room_status"`
}

func (r RoomRequest) input() services.RoomInput {
	return services.RoomInput{
		RoomNumber:  r.RoomNumber,
		Type:        r.Type,
		Floor:       r.Floor,
		Price:       r.Price,
		Status:      r.Status,
		Description: r.Description,
	}
}

type RoomController struct {
	RoomSvc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{RoomSvc: svc}
}

// roomFilterFromQuery reads type, floor, search and status.
func roomFilterFromQuery(c *gin.Context) (repository.RoomFilter, bool) {
	f := repository.RoomFilter{
		Type:   strings.TrimSpace(c.Query("type")),
		Search: strings.TrimSpace(c.Query("search")),
		Status: strings.TrimSpace(c.Query("status")),
	}
	if raw := strings.TrimSpace(c.Query("floor")); raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.validation", "floor must be a number", gin.H{"field": "floor"})
			return f, false
		}
		f.Floor = &floor
	}
	return f, true
}

// ----------------------------------------------------
// 1. Get Rooms (GET /api/rooms)
// ----------------------------------------------------
func (rc *RoomController) GetRooms(c *gin.Context) {
	filter, ok := roomFilterFromQuery(c)
	if !ok {
		return
	}
	rooms, err := rc.RoomSvc.List(c.Request.Context(), propertyID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// ----------------------------------------------------
// 2. Get Room (GET /api/rooms/:id)
// ----------------------------------------------------
func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := pathID(c, "room")
	if !ok {
		return
	}
	room, err := rc.RoomSvc.Get(c.Request.Context(), propertyID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// ----------------------------------------------------
// 3. Create Room (POST /api/rooms)
// ----------------------------------------------------
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var req RoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := rc.RoomSvc.Create(c.Request.Context(), propertyID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// ----------------------------------------------------
// 4. Update Room (PUT/PATCH /api/rooms/:id)
// ----------------------------------------------------
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := pathID(c, "room")
	if !ok {
		return
	}
	var req RoomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := rc.RoomSvc.Update(c.Request.Context(), propertyID(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// ----------------------------------------------------
// 5. Update Room Status (PATCH /api/rooms/:id/status)
// ----------------------------------------------------
func (rc *RoomController) UpdateRoomStatus(c *gin.Context) {
	id, ok := pathID(c, "room")
	if !ok {
		return
	}
	var req RoomStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := rc.RoomSvc.SetStatus(c.Request.Context(), propertyID(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// ----------------------------------------------------
// 6. Housekeeping board (GET /api/housekeeping/tasks)
// ----------------------------------------------------
func (rc *RoomController) GetHousekeepingTasks(c *gin.Context) {
	tasks, err := rc.RoomSvc.HousekeepingTasks(c.Request.Context(), propertyID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, tasks)
}
