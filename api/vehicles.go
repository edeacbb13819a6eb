package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

type VehicleDirectory interface {
	GetByLicensePlate(ctx context.Context, licensePlate string) (*domain.Vehicle, error)
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
}

type VehicleHandler struct {
	vehicles VehicleDirectory
}

type authorizedDestinationResponse struct {
	StationID   string `json:"station_id"`
	StationName string `json:"station_name"`
	Priority    int    `json:"priority"`
	IsDefault   bool   `json:"is_default"`
}

type vehicleResponse struct {
	ID                     int64                           `json:"id"`
	LicensePlate           string                          `json:"license_plate"`
	Capacity               int                             `json:"capacity"`
	IsActive               bool                            `json:"is_active"`
	IsAvailable            bool                            `json:"is_available"`
	DefaultDestinationID   string                          `json:"default_destination_id,omitempty"`
	AuthorizedDestinations []authorizedDestinationResponse `json:"authorized_destinations"`
}

func NewVehicleHandler(vehicles VehicleDirectory) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

func (h *VehicleHandler) Register(router *gin.RouterGroup) {
	router.GET("/plate/:licensePlate", h.getByPlate)
	router.GET("/id/:id", h.getByID)
}

func (h *VehicleHandler) getByPlate(c *gin.Context) {
	vehicle, err := h.vehicles.GetByLicensePlate(c.Request.Context(), c.Param("licensePlate"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(vehicle))
}

func (h *VehicleHandler) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	vehicle, err := h.vehicles.GetByID(c.Request.Context(), id)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, toVehicleResponse(vehicle))
}

func toVehicleResponse(vehicle *domain.Vehicle) vehicleResponse {
	resp := vehicleResponse{
		ID:                   vehicle.ID,
		LicensePlate:         vehicle.LicensePlate,
		Capacity:             vehicle.Capacity,
		IsActive:             vehicle.IsActive,
		IsAvailable:          vehicle.IsAvailable,
		DefaultDestinationID: vehicle.DefaultDestinationID,
	}
	for _, d := range vehicle.AuthorizedDestinations {
		resp.AuthorizedDestinations = append(resp.AuthorizedDestinations, authorizedDestinationResponse{
			StationID:   d.StationID,
			StationName: d.StationName,
			Priority:    d.Priority,
			IsDefault:   d.IsDefault,
		})
	}
	return resp
}
