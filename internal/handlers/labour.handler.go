package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/nimasrn/marketplace/internal/model"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
)

type LabourService interface {
	Create(ctx context.Context, req model.LabourCreateRequest) (*model.ActingLabour, error)
	Get(ctx context.Context, id int64) (*model.ActingLabour, error)
	List(ctx context.Context, f model.LabourFilter) ([]*model.ActingLabour, int64, error)
	ListAvailable(ctx context.Context, page model.Page) ([]*model.ActingLabour, int64, error)
	Update(ctx context.Context, id int64, req model.LabourUpdateRequest) (*model.ActingLabour, error)
	Delete(ctx context.Context, id int64) error
	Assign(ctx context.Context, id int64, req model.LabourAssignRequest) (*model.ActingLabour, error)
	Unassign(ctx context.Context, id int64) (*model.ActingLabour, error)
}

type LabourHandler struct {
	svc LabourService
}

func RegisterLabourRoutes(e *router.Group, h *LabourHandler) {
	e.GET("/acting-labours", h.ListLabours)
	e.POST("/acting-labours", h.CreateLabour)
	e.GET("/acting-labours/available", h.ListAvailable)
	e.GET("/acting-labours/{id}", h.GetLabour)
	e.PUT("/acting-labours/{id}", h.UpdateLabour)
	e.DELETE("/acting-labours/{id}", h.DeleteLabour)
	e.POST("/acting-labours/{id}/assign", h.AssignLabour)
	e.POST("/acting-labours/{id}/unassign", h.UnassignLabour)
}

func NewLabourHandler(svc LabourService) *LabourHandler {
	return &LabourHandler{
		svc: svc,
	}
}

func (h *LabourHandler) ListLabours(ctx *xhttp.RequestCtx) {
	f := model.LabourFilter{Page: pageFrom(ctx)}
	if v := query(ctx, "status"); v != "" {
		status := model.LabourStatus(strings.ToUpper(v))
		f.Status = &status
	}
	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.ActingLabour]{Items: items, Total: total})
}

func (h *LabourHandler) ListAvailable(ctx *xhttp.RequestCtx) {
	items, total, err := h.svc.ListAvailable(ctx, pageFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.ActingLabour]{Items: items, Total: total})
}

func (h *LabourHandler) CreateLabour(ctx *xhttp.RequestCtx) {
	var req model.LabourCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	l, err := h.svc.Create(ctx, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, l)
}

func (h *LabourHandler) GetLabour(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	l, err := h.svc.Get(ctx, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, l)
}

func (h *LabourHandler) UpdateLabour(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.LabourUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	l, err := h.svc.Update(ctx, id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, l)
}

func (h *LabourHandler) DeleteLabour(ctx *xhttp.RequestCtx) {
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

func (h *LabourHandler) AssignLabour(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.LabourAssignRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	req.TargetType = model.AssignTargetType(strings.ToUpper(strings.TrimSpace(string(req.TargetType))))

	l, err := h.svc.Assign(ctx, id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, l)
}

func (h *LabourHandler) UnassignLabour(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	l, err := h.svc.Unassign(ctx, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, l)
}
