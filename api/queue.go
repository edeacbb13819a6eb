package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
	"github.com/n3on404/loauj-local-node-sub001/internal/service/queue"
)

type QueueHandler struct {
	service queue.QueueUseCase
}

type enterQueueRequest struct {
	LicensePlate  string `json:"license_plate" binding:"required"`
	DestinationID string `json:"destination_id" binding:"required"`
	QueueType     string `json:"queue_type"`
}

type exitQueueRequest struct {
	LicensePlate string `json:"license_plate" binding:"required"`
}

type moveQueueRequest struct {
	LicensePlate  string `json:"license_plate" binding:"required"`
	DestinationID string `json:"destination_id" binding:"required"`
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type queueEntryResponse struct {
	ID              int64  `json:"id"`
	LicensePlate    string `json:"license_plate"`
	DestinationID   string `json:"destination_id"`
	DestinationName string `json:"destination_name"`
	QueueType       string `json:"queue_type"`
	QueuePosition   int    `json:"queue_position"`
	Status          string `json:"status"`
	EnteredAt       string `json:"entered_at"`
	AvailableSeats  int    `json:"available_seats"`
	TotalSeats      int    `json:"total_seats"`
	BasePriceCents  int64  `json:"base_price_cents"`
}

func NewQueueHandler(service queue.QueueUseCase) *QueueHandler {
	return &QueueHandler{service: service}
}

func (h *QueueHandler) Register(router *gin.RouterGroup) {
	router.POST("/enter", h.enter)
	router.POST("/exit", h.exit)
	router.POST("/move", h.move)
	router.PUT("/:licensePlate/status", h.setStatus)
	router.GET("/vehicle/:licensePlate", h.activeEntry)
	router.GET("/destination/:destinationId", h.list)
}

func (h *QueueHandler) activeEntry(c *gin.Context) {
	entry, err := h.service.ActiveEntry(c.Request.Context(), c.Param("licensePlate"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, toQueueEntryResponse(entry))
}

func (h *QueueHandler) enter(c *gin.Context) {
	var req enterQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	queueType := domain.QueueType(req.QueueType)
	if queueType == "" {
		queueType = domain.QueueTypeRegular
	}
	if queueType != domain.QueueTypeRegular && queueType != domain.QueueTypeOvernight {
		c.JSON(http.StatusBadRequest, gin.H{"error": "queue_type must be REGULAR or OVERNIGHT"})
		return
	}

	entry, err := h.service.Enter(c.Request.Context(), req.LicensePlate, req.DestinationID, queueType)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQueueEntryResponse(entry))
}

func (h *QueueHandler) exit(c *gin.Context) {
	var req exitQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.Exit(c.Request.Context(), req.LicensePlate)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, toQueueEntryResponse(entry))
}

func (h *QueueHandler) move(c *gin.Context) {
	var req moveQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.Move(c.Request.Context(), req.LicensePlate, req.DestinationID)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, toQueueEntryResponse(entry))
}

func (h *QueueHandler) setStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.service.SetStatus(c.Request.Context(), c.Param("licensePlate"), domain.QueueStatus(req.Status))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, toQueueEntryResponse(entry))
}

func (h *QueueHandler) list(c *gin.Context) {
	entries, err := h.service.ListByDestination(c.Request.Context(), c.Param("destinationId"))
	if err != nil {
		abortWith(c, err)
		return
	}

	out := make([]queueEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toQueueEntryResponse(&entries[i]))
	}
	c.JSON(http.StatusOK, out)
}

func toQueueEntryResponse(e *domain.QueueEntry) queueEntryResponse {
	return queueEntryResponse{
		ID:              e.ID,
		LicensePlate:    e.LicensePlate,
		DestinationID:   e.DestinationID,
		DestinationName: e.DestinationName,
		QueueType:       string(e.QueueType),
		QueuePosition:   e.QueuePosition,
		Status:          string(e.Status),
		EnteredAt:       e.EnteredAt.Format(time.RFC3339),
		AvailableSeats:  e.AvailableSeats,
		TotalSeats:      e.TotalSeats,
		BasePriceCents:  e.BasePriceCents,
	}
}
