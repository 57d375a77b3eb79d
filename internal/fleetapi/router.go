package fleetapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimasrn/marketplace/internal/auth"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/rs/zerolog"
)

const ownerKey = "fleet.owner"

type FleetService interface {
	Profile(ctx context.Context, ownerID int64) (*model.Employee, error)
	ListTrucks(ctx context.Context, ownerID int64, page model.Page) ([]*model.Truck, int64, error)
	GetTruck(ctx context.Context, ownerID, id int64) (*model.Truck, error)
	CreateTruck(ctx context.Context, ownerID int64, req model.TruckRequest) (*model.Truck, error)
	UpdateTruck(ctx context.Context, ownerID, id int64, req model.TruckRequest) (*model.Truck, error)
	DeleteTruck(ctx context.Context, ownerID, id int64) error
	ListDrivers(ctx context.Context, ownerID int64, page model.Page) ([]*model.ActingLabour, int64, error)
	ListOrders(ctx context.Context, ownerID int64, f model.OrderFilter) ([]*model.Order, int64, error)
	ListTrips(ctx context.Context, f model.TripFilter) ([]*model.Trip, int64, error)
	GetTrip(ctx context.Context, ownerID, id int64) (*model.Trip, error)
	CreateTrip(ctx context.Context, ownerID int64, req model.TripCreateRequest) (*model.Trip, error)
	UpdateTripStatus(ctx context.Context, ownerID, id int64, next model.TripStatus) (*model.Trip, error)
}

// SetupRouter builds the truck owner portal. Every route under /api/fleet
// requires an authenticated truck owner.
func SetupRouter(svc FleetService, authn auth.Authenticator, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	h := &Handler{svc: svc}
	api := router.Group("/api/fleet", authenticate(authn, svc))
	{
		api.GET("/profile", h.Profile)

		api.GET("/trucks", h.ListTrucks)
		api.POST("/trucks", h.CreateTruck)
		api.GET("/trucks/:id", h.GetTruck)
		api.PUT("/trucks/:id", h.UpdateTruck)
		api.DELETE("/trucks/:id", h.DeleteTruck)

		api.GET("/drivers", h.ListDrivers)
		api.GET("/orders", h.ListOrders)

		api.GET("/trips", h.ListTrips)
		api.POST("/trips", h.CreateTrip)
		api.GET("/trips/:id", h.GetTrip)
		api.PATCH("/trips/:id/status", h.UpdateTripStatus)
	}
	return router
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	}
}

// authenticate resolves the caller and checks it is a truck owner before any
// handler runs.
func authenticate(authn auth.Authenticator, svc FleetService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := authn.Authenticate(c.GetHeader)
		if err != nil {
			abort(c, err)
			return
		}
		if _, err := svc.Profile(c.Request.Context(), p.ID); err != nil {
			abort(c, err)
			return
		}
		c.Set(ownerKey, p.ID)
		c.Next()
	}
}

func ownerID(c *gin.Context) int64 {
	return c.GetInt64(ownerKey)
}
