package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/marketplace/internal/model"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
)

type AdminService interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error)
	Create(ctx context.Context, req model.AdminCreateRequest) (*model.Admin, error)
	Get(ctx context.Context, id int64) (*model.Admin, error)
	List(ctx context.Context, page model.Page) ([]*model.Admin, int64, error)
	Update(ctx context.Context, id int64, req model.AdminUpdateRequest) (*model.Admin, error)
	Delete(ctx context.Context, id int64) error
	ListAudit(ctx context.Context, f model.AuditFilter) ([]*model.AuditLog, int64, error)
}

type AdminHandler struct {
	svc AdminService
}

func RegisterAdminRoutes(e *router.Group, h *AdminHandler, g *Guard) {
	e.POST("/admin-auth/login", h.Login)
	e.GET("/admin-auth", g.Admin(h.ListAdmins))
	e.POST("/admin-auth", g.Admin(h.CreateAdmin))
	e.GET("/admin-auth/{id}", g.Admin(h.GetAdmin))
	e.PUT("/admin-auth/{id}", g.Admin(h.UpdateAdmin))
	e.DELETE("/admin-auth/{id}", g.Admin(h.DeleteAdmin))
	e.GET("/audit-logs", g.Admin(h.ListAudit))
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{
		svc: svc,
	}
}

func (h *AdminHandler) Login(ctx *xhttp.RequestCtx) {
	var req model.LoginRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	res, err := h.svc.Login(ctx, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}

func (h *AdminHandler) ListAdmins(ctx *xhttp.RequestCtx) {
	items, total, err := h.svc.List(ctx, pageFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Admin]{Items: items, Total: total})
}

func (h *AdminHandler) CreateAdmin(ctx *xhttp.RequestCtx) {
	var req model.AdminCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	a, err := h.svc.Create(ctx, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, a)
}

func (h *AdminHandler) GetAdmin(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	a, err := h.svc.Get(ctx, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, a)
}

func (h *AdminHandler) UpdateAdmin(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.AdminUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	a, err := h.svc.Update(ctx, id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, a)
}

func (h *AdminHandler) DeleteAdmin(ctx *xhttp.RequestCtx) {
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

func (h *AdminHandler) ListAudit(ctx *xhttp.RequestCtx) {
	var err error
	f := model.AuditFilter{
		EntityType: query(ctx, "entityType"),
		Page:       pageFrom(ctx),
	}
	if f.EntityID, err = queryInt64(ctx, "entityId"); err != nil {
		fail(ctx, err)
		return
	}
	items, total, err := h.svc.ListAudit(ctx, f)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.AuditLog]{Items: items, Total: total})
}
