package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/marketplace/internal/model"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
)

type ManufacturerService interface {
	Create(ctx context.Context, req model.ManufacturerRequest) (*model.Manufacturer, error)
	Get(ctx context.Context, id int64) (*model.Manufacturer, error)
	List(ctx context.Context, f model.ManufacturerFilter) ([]*model.Manufacturer, int64, error)
	Update(ctx context.Context, id int64, req model.ManufacturerRequest) (*model.Manufacturer, error)
	Delete(ctx context.Context, id int64) error
	ListEmployees(ctx context.Context, manufacturerID int64) ([]*model.Employee, error)
	AddEmployee(ctx context.Context, manufacturerID int64, req model.EmployeeRequest) (*model.Employee, error)
	RemoveEmployee(ctx context.Context, manufacturerID, employeeID int64) error
}

type ManufacturerHandler struct {
	svc ManufacturerService
}

func RegisterManufacturerRoutes(e *router.Group, h *ManufacturerHandler) {
	e.GET("/manufacturers", h.ListManufacturers)
	e.POST("/manufacturers", h.CreateManufacturer)
	e.GET("/manufacturers/{id}", h.GetManufacturer)
	e.PUT("/manufacturers/{id}", h.UpdateManufacturer)
	e.DELETE("/manufacturers/{id}", h.DeleteManufacturer)
	e.GET("/manufacturers/{id}/employees", h.ListEmployees)
	e.POST("/manufacturers/{id}/employees", h.AddEmployee)
	e.DELETE("/manufacturers/{id}/employees/{employeeId}", h.RemoveEmployee)
}

func NewManufacturerHandler(svc ManufacturerService) *ManufacturerHandler {
	return &ManufacturerHandler{
		svc: svc,
	}
}

func (h *ManufacturerHandler) ListManufacturers(ctx *xhttp.RequestCtx) {
	f := model.ManufacturerFilter{
		VerifiedOnly: query(ctx, "verified") == "true",
		Page:         pageFrom(ctx),
	}
	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Manufacturer]{Items: items, Total: total})
}

func (h *ManufacturerHandler) CreateManufacturer(ctx *xhttp.RequestCtx) {
	var req model.ManufacturerRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	m, err := h.svc.Create(ctx, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, m)
}

func (h *ManufacturerHandler) GetManufacturer(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	m, err := h.svc.Get(ctx, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, m)
}

func (h *ManufacturerHandler) UpdateManufacturer(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.ManufacturerRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	m, err := h.svc.Update(ctx, id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, m)
}

func (h *ManufacturerHandler) DeleteManufacturer(ctx *xhttp.RequestCtx) {
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

func (h *ManufacturerHandler) ListEmployees(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	items, err := h.svc.ListEmployees(ctx, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Employee]{Items: items, Total: int64(len(items))})
}

func (h *ManufacturerHandler) AddEmployee(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.EmployeeRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	e, err := h.svc.AddEmployee(ctx, id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, e)
}

func (h *ManufacturerHandler) RemoveEmployee(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	employeeID, err := pathInt64(ctx, "employeeId")
	if err != nil {
		fail(ctx, err)
		return
	}
	if err := h.svc.RemoveEmployee(ctx, id, employeeID); err != nil {
		fail(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}
