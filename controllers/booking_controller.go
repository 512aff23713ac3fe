// controllers/booking_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-ops/services"
	"hotel-ops/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type GuestPayload struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type RoomItem struct {
	RoomID   uint `json:"room_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"omitempty,min=1"`
}

type CreateBookingRequest struct {
	Guest            GuestPayload `json:"guest" binding:"required"`
	CheckIn          string       `json:"check_in" binding:"required"`
	CheckOut         string       `json:"check_out" binding:"required"`
	Rooms            []RoomItem   `json:"rooms" binding:"required,min=1,dive"`
	Status           string       `json:"status" binding:"omitempty,oneof=confirmed checked_in"`
	Notes            string       `json:"notes"`
	PaymentConfirmed bool         `json:"payment_confirmed"`
	PaymentStatus    string       `json:"payment_status"`
	PaymentMethod    string       `json:"payment_method"`
}

type UpdateBookingRequest struct {
	Guest            *GuestPayload `json:"guest"`
	CheckIn          *string       `json:"check_in"`
	CheckOut         *string       `json:"check_out"`
	Rooms            []RoomItem    `json:"rooms" binding:"omitempty,min=1,dive"`
	Status           *string       `json:"status" binding:"omitempty,booking_status"`
	Notes            *string       `json:"notes"`
	PaymentConfirmed *bool         `json:"payment_confirmed"`
	PaymentStatus    *string       `json:"payment_status"`
	PaymentMethod    *string       `json:"payment_method"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required,booking_status"`
}

type QuoteRequest struct {
	CheckIn  string     `json:"check_in" binding:"required"`
	CheckOut string     `json:"check_out" binding:"required"`
	Rooms    []RoomItem `json:"rooms" binding:"required,min=1,dive"`
}

func (g GuestPayload) input() services.GuestInput {
	return services.GuestInput{Name: g.Name, Email: g.Email, Phone: g.Phone}
}

func roomRequests(items []RoomItem) []services.RoomRequest {
	if items == nil {
		return nil
	}
	out := make([]services.RoomRequest, len(items))
	for i, it := range items {
		out[i] = services.RoomRequest{RoomID: it.RoomID, Quantity: it.Quantity}
	}
	return out
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

// GET /api/bookings?status=&from=&to=
func (bc *BookingController) GetBookings(c *gin.Context) {
	list, err := bc.BookingSvc.ListBookings(c.Request.Context(), propertyID(c),
		c.Query("status"), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// POST /api/bookings
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := bc.BookingSvc.CreateBooking(c.Request.Context(), propertyID(c), services.CreateBookingInput{
		Guest:            req.Guest.input(),
		CheckIn:          req.CheckIn,
		CheckOut:         req.CheckOut,
		Rooms:            roomRequests(req.Rooms),
		Status:           req.Status,
		Notes:            req.Notes,
		PaymentConfirmed: req.PaymentConfirmed,
		PaymentStatus:    req.PaymentStatus,
		PaymentMethod:    req.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// GET /api/bookings/:id
func (bc *BookingController) GetBookingDetails(c *gin.Context) {
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}
	booking, err := bc.BookingSvc.GetBooking(c.Request.Context(), propertyID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// PUT/PATCH /api/bookings/:id
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}
	var req UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := services.BookingPatch{
		CheckIn:          req.CheckIn,
		CheckOut:         req.CheckOut,
		Rooms:            roomRequests(req.Rooms),
		Status:           req.Status,
		Notes:            req.Notes,
		PaymentConfirmed: req.PaymentConfirmed,
		PaymentStatus:    req.PaymentStatus,
		PaymentMethod:    req.PaymentMethod,
	}
	if req.Guest != nil {
		g := req.Guest.input()
		patch.Guest = &g
	}

	booking, err := bc.BookingSvc.UpdateBooking(c.Request.Context(), propertyID(c), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// DELETE /api/bookings/:id
func (bc *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}
	if err := bc.BookingSvc.DeleteBooking(c.Request.Context(), propertyID(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// POST /api/bookings/:id/status
func (bc *BookingController) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	booking, err := bc.BookingSvc.TransitionBookingStatus(c.Request.Context(), propertyID(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// GET /api/bookings/:id/events
func (bc *BookingController) GetEvents(c *gin.Context) {
	id, ok := pathID(c, "booking")
	if !ok {
		return
	}
	list, err := bc.BookingSvc.ListBookingEvents(c.Request.Context(), propertyID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// POST /api/bookings/quote
func (bc *BookingController) Quote(c *gin.Context) {
	var req QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := bc.BookingSvc.QuoteBooking(c.Request.Context(), propertyID(c), req.CheckIn, req.CheckOut, roomRequests(req.Rooms))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, quote)
}

// GET /api/availability?check_in=&check_out=&type=&floor=&search=
func (bc *BookingController) FindAvailableRooms(c *gin.Context) {
	filter, ok := roomFilterFromQuery(c)
	if !ok {
		return
	}
	filter.Status = ""
	rooms, err := bc.BookingSvc.FindAvailableRooms(c.Request.Context(), propertyID(c),
		c.Query("check_in"), c.Query("check_out"), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GET /api/rooms/:id/availability?check_in=&check_out=&exclude_booking_id=
func (bc *BookingController) RoomAvailability(c *gin.Context) {
	id, ok := pathID(c, "room")
	if !ok {
		return
	}
	var exclude uint
	if raw := c.Query("exclude_booking_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "error.validation",
				"exclude_booking_id must be a number", gin.H{"field": "exclude_booking_id"})
			return
		}
		exclude = uint(v)
	}

	free, err := bc.BookingSvc.IsAvailable(c.Request.Context(), propertyID(c), id,
		c.Query("check_in"), c.Query("check_out"), exclude)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"room_id": id, "available": free})
}
