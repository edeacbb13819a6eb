package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
	"github.com/n3on404/loauj-local-node-sub001/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	DestinationID    string `json:"destination_id" binding:"required"`
	Seats            int    `json:"seats" binding:"required"`
	BookingType      string `json:"booking_type" binding:"required"`
	StaffID          string `json:"staff_id"`
	UserID           string `json:"user_id"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	CustomerPhone    string `json:"customer_phone"`
}

type bookingResponse struct {
	ID               int64  `json:"id"`
	QueueID          int64  `json:"queue_id"`
	SeatsBooked      int    `json:"seats_booked"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	BookingType      string `json:"booking_type"`
	VerificationCode string `json:"verification_code"`
	IsVerified       bool   `json:"is_verified"`
}

type bookingResultResponse struct {
	Bookings         []bookingResponse `json:"bookings"`
	TotalAmountCents int64             `json:"total_amount_cents"`
}

type availabilityVehicleResponse struct {
	QueueID        int64  `json:"queue_id"`
	LicensePlate   string `json:"license_plate"`
	QueueType      string `json:"queue_type"`
	QueuePosition  int    `json:"queue_position"`
	AvailableSeats int    `json:"available_seats"`
	BasePriceCents int64  `json:"base_price_cents"`
}

type availabilityResponse struct {
	DestinationID       string                        `json:"destination_id"`
	TotalAvailableSeats int                           `json:"total_available_seats"`
	Vehicles            []availabilityVehicleResponse `json:"vehicles"`
}

type verifyRequest struct {
	Code    string `json:"code" binding:"required"`
	StaffID string `json:"staff_id" binding:"required"`
}

type verifyResponse struct {
	Booking         bookingResponse `json:"booking"`
	AlreadyVerified bool            `json:"already_verified"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/availability/:destinationId", h.availability)
	router.GET("/queue/:queueId", h.listByQueue)
	router.POST("/", h.create)
	router.POST("/verify", h.verify)
}

func (h *BookingHandler) listByQueue(c *gin.Context) {
	queueID, err := strconv.ParseInt(c.Param("queueId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "queueId must be an integer"})
		return
	}

	bookings, err := h.service.ListByQueue(c.Request.Context(), queueID)
	if err != nil {
		abortWith(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) availability(c *gin.Context) {
	result, err := h.service.GetAvailableSeats(c.Request.Context(), c.Param("destinationId"))
	if err != nil {
		abortWith(c, err)
		return
	}

	resp := availabilityResponse{
		DestinationID:       result.DestinationID,
		TotalAvailableSeats: result.TotalAvailableSeats,
		Vehicles:            make([]availabilityVehicleResponse, 0, len(result.Vehicles)),
	}
	for _, v := range result.Vehicles {
		resp.Vehicles = append(resp.Vehicles, availabilityVehicleResponse{
			QueueID:        v.ID,
			LicensePlate:   v.LicensePlate,
			QueueType:      string(v.QueueType),
			QueuePosition:  v.QueuePosition,
			AvailableSeats: v.AvailableSeats,
			BasePriceCents: v.BasePriceCents,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		DestinationID:  req.DestinationID,
		SeatsRequested: req.Seats,
		Source: domain.BookingSource{
			Type:             domain.BookingType(req.BookingType),
			StaffID:          req.StaffID,
			UserID:           req.UserID,
			TotalAmountCents: req.TotalAmountCents,
			CustomerPhone:    req.CustomerPhone,
		},
	})
	if err != nil {
		abortWith(c, err)
		return
	}

	resp := bookingResultResponse{TotalAmountCents: result.TotalAmountCents}
	for _, b := range result.Bookings {
		resp.Bookings = append(resp.Bookings, toBookingResponse(b))
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BookingHandler) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Verify(c.Request.Context(), req.Code, req.StaffID)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, verifyResponse{
		Booking:         toBookingResponse(*result.Booking),
		AlreadyVerified: result.AlreadyVerified,
	})
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:               b.ID,
		QueueID:          b.QueueID,
		SeatsBooked:      b.SeatsBooked,
		TotalAmountCents: b.TotalAmountCents,
		BookingType:      string(b.BookingType),
		VerificationCode: b.VerificationCode,
		IsVerified:       b.IsVerified,
	}
}
