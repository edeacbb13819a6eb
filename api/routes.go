package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/n3on404/loauj-local-node-sub001/internal/service/pricing"
)

type RouteHandler struct {
	service pricing.PricingUseCase
}

type updatePriceRequest struct {
	BasePriceCents int64 `json:"base_price_cents" binding:"required"`
}

type routeResponse struct {
	DestinationID   string `json:"destination_id"`
	DestinationName string `json:"destination_name"`
	BasePriceCents  int64  `json:"base_price_cents"`
}

func NewRouteHandler(service pricing.PricingUseCase) *RouteHandler {
	return &RouteHandler{service: service}
}

func (h *RouteHandler) Register(router *gin.RouterGroup) {
	router.GET("/:destinationId", h.get)
	router.PUT("/:destinationId/price", h.updatePrice)
}

func (h *RouteHandler) get(c *gin.Context) {
	route, err := h.service.GetRoute(c.Request.Context(), c.Param("destinationId"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, routeResponse{
		DestinationID:   route.DestinationID,
		DestinationName: route.DestinationName,
		BasePriceCents:  route.BasePriceCents,
	})
}

func (h *RouteHandler) updatePrice(c *gin.Context) {
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	route, err := h.service.UpdateBasePrice(c.Request.Context(), c.Param("destinationId"), req.BasePriceCents)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, routeResponse{
		DestinationID:   route.DestinationID,
		DestinationName: route.DestinationName,
		BasePriceCents:  route.BasePriceCents,
	})
}
