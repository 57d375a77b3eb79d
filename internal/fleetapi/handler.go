package fleetapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/services"
	"github.com/nimasrn/marketplace/pkg/apperr"
)

type Handler struct {
	svc FleetService
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation,
		apperr.KindInvalidTarget,
		apperr.KindInvalidTransition:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abort(c, apperr.New(apperr.KindValidation, "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func page(c *gin.Context) model.Page {
	var p model.Page
	p.Limit, _ = strconv.Atoi(c.Query("limit"))
	p.Offset, _ = strconv.Atoi(c.Query("offset"))
	return p.Normalize()
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abort(c, apperr.Wrap(apperr.KindValidation, "invalid request", err))
		return false
	}
	return true
}

func (h *Handler) Profile(c *gin.Context) {
	e, err := h.svc.Profile(c.Request.Context(), ownerID(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) ListTrucks(c *gin.Context) {
	items, total, err := h.svc.ListTrucks(c.Request.Context(), ownerID(c), page(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*model.Truck]{Items: items, Total: total})
}

func (h *Handler) GetTruck(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.svc.GetTruck(c.Request.Context(), ownerID(c), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTruck(c *gin.Context) {
	var req model.TruckRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.svc.CreateTruck(c.Request.Context(), ownerID(c), req)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTruck(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.TruckRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.svc.UpdateTruck(c.Request.Context(), ownerID(c), id, req)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTruck(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTruck(c.Request.Context(), ownerID(c), id); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListDrivers(c *gin.Context) {
	items, total, err := h.svc.ListDrivers(c.Request.Context(), ownerID(c), page(c))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*model.ActingLabour]{Items: items, Total: total})
}

func (h *Handler) ListOrders(c *gin.Context) {
	f := model.OrderFilter{Page: page(c)}
	if v := c.Query("status"); v != "" {
		status := model.OrderStatus(strings.ToUpper(v))
		if !status.Valid() {
			abort(c, apperr.Newf(apperr.KindValidation, "unknown order status %q", v))
			return
		}
		f.Status = &status
	}
	items, total, err := h.svc.ListOrders(c.Request.Context(), ownerID(c), f)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*model.Order]{Items: items, Total: total})
}

func (h *Handler) ListTrips(c *gin.Context) {
	f := model.TripFilter{OwnerID: ownerID(c), Page: page(c)}
	if v := c.Query("status"); v != "" {
		status, err := services.ParseTripStatus(v)
		if err != nil {
			abort(c, err)
			return
		}
		f.Status = &status
	}
	items, total, err := h.svc.ListTrips(c.Request.Context(), f)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*model.Trip]{Items: items, Total: total})
}

func (h *Handler) GetTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.svc.GetTrip(c.Request.Context(), ownerID(c), id)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTrip(c *gin.Context) {
	var req model.TripCreateRequest
	if !bind(c, &req) {
		return
	}
	t, err := h.svc.CreateTrip(c.Request.Context(), ownerID(c), req)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTripStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req model.TripStatusRequest
	if !bind(c, &req) {
		return
	}
	next, err := services.ParseTripStatus(string(req.Status))
	if err != nil {
		abort(c, err)
		return
	}
	t, err := h.svc.UpdateTripStatus(c.Request.Context(), ownerID(c), id, next)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
