package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/nimasrn/marketplace/internal/model"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
)

type OrderService interface {
	Create(ctx context.Context, req model.OrderCreateRequest) (*model.Order, error)
	Get(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error)
	Update(ctx context.Context, id int64, req model.OrderUpdateRequest) (*model.Order, error)
	UpdateStatus(ctx context.Context, id int64, next model.OrderStatus) (*model.Order, error)
	Assign(ctx context.Context, actorID *int64, id, truckOwnerID int64) (*model.Order, error)
	Delete(ctx context.Context, id int64) error
}

type OrderHandler struct {
	svc OrderService
}

func RegisterOrderRoutes(e *router.Group, h *OrderHandler) {
	e.GET("/orders", h.ListOrders)
	e.POST("/orders", h.CreateOrder)
	e.GET("/orders/{id}", h.GetOrder)
	e.PUT("/orders/{id}", h.UpdateOrder)
	e.DELETE("/orders/{id}", h.DeleteOrder)
	e.POST("/orders/{id}/assign", h.AssignOrder)
	e.PATCH("/orders/{id}/status", h.UpdateStatus)
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{
		svc: svc,
	}
}

func orderFilter(ctx *xhttp.RequestCtx) (model.OrderFilter, error) {
	var err error
	f := model.OrderFilter{Page: pageFrom(ctx)}
	if v := query(ctx, "status"); v != "" {
		status := model.OrderStatus(strings.ToUpper(v))
		f.Status = &status
	}
	if f.ManufacturerID, err = queryInt64(ctx, "manufacturerId"); err != nil {
		return f, err
	}
	if f.AssignedTruckOwnerID, err = queryInt64(ctx, "truckOwnerId"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *OrderHandler) ListOrders(ctx *xhttp.RequestCtx) {
	f, err := orderFilter(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}
	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Order]{Items: items, Total: total})
}

func (h *OrderHandler) CreateOrder(ctx *xhttp.RequestCtx) {
	var req model.OrderCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	o, err := h.svc.Create(ctx, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, o)
}

func (h *OrderHandler) GetOrder(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	o, err := h.svc.Get(ctx, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, o)
}

func (h *OrderHandler) UpdateOrder(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.OrderUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	o, err := h.svc.Update(ctx, id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, o)
}

func (h *OrderHandler) DeleteOrder(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	if err := h.svc.Delete(ctx, id); err != nil {
		fail(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *OrderHandler) AssignOrder(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.OrderAssignRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	o, err := h.svc.Assign(ctx, actorID(ctx), id, req.TruckOwnerID)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, o)
}

func (h *OrderHandler) UpdateStatus(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.OrderStatusRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	next := model.OrderStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	o, err := h.svc.UpdateStatus(ctx, id, next)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, o)
}
