package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/n3on404/loauj-local-node-sub001/api"
	"github.com/n3on404/loauj-local-node-sub001/config"
)

// Handler is anything that mounts its routes on a group; all api handlers
// satisfy it.
type Handler interface {
	Register(router *gin.RouterGroup)
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, queueHandler, bookingHandler, routeHandler, vehicleHandler Handler) error {
	router := gin.Default()

	queueHandler.Register(router.Group("/queue"))
	bookingHandler.Register(router.Group("/bookings"))
	routeHandler.Register(router.Group("/routes"))
	vehicleHandler.Register(router.Group("/vehicles"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "station_id": cfg.Station.StationID})
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

var _ Handler = (*api.QueueHandler)(nil)
var _ Handler = (*api.BookingHandler)(nil)
var _ Handler = (*api.RouteHandler)(nil)
var _ Handler = (*api.VehicleHandler)(nil)
