package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/nimasrn/marketplace/internal/model"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
)

type UserService interface {
	Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, f model.UserFilter) ([]*model.User, int64, error)
	Update(ctx context.Context, id int64, req model.UserUpdateRequest) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type ApprovalService interface {
	Approve(ctx context.Context, actorID *int64, userID int64) (*model.User, error)
	Reject(ctx context.Context, actorID *int64, userID int64, reason string) (*model.User, error)
	ListPending(ctx context.Context, page model.Page) ([]*model.User, int64, error)
}

type UserHandler struct {
	users     UserService
	approvals ApprovalService
}

func RegisterUserRoutes(e *router.Group, h *UserHandler, g *Guard) {
	e.GET("/users", h.ListUsers)
	e.POST("/users", h.CreateUser)
	e.GET("/users/pending", g.Admin(h.ListPending))
	e.GET("/users/{id}", h.GetUser)
	e.PUT("/users/{id}", h.UpdateUser)
	e.DELETE("/users/{id}", h.DeleteUser)
	e.POST("/users/{id}/approve", g.Admin(h.Approve))
	e.POST("/users/{id}/reject", g.Admin(h.Reject))
}

func NewUserHandler(users UserService, approvals ApprovalService) *UserHandler {
	return &UserHandler{
		users:     users,
		approvals: approvals,
	}
}

func (h *UserHandler) ListUsers(ctx *xhttp.RequestCtx) {
	f := model.UserFilter{Page: pageFrom(ctx)}
	if v := query(ctx, "status"); v != "" {
		status := model.UserStatus(strings.ToUpper(v))
		f.Status = &status
	}
	if v := query(ctx, "userType"); v != "" {
		f.UserType = &v
	}
	if v := query(ctx, "role"); v != "" {
		f.Role = &v
	}
	if v := query(ctx, "phone"); v != "" {
		f.Phone = &v
	}

	items, total, err := h.users.List(ctx, f)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.User]{Items: items, Total: total})
}

func (h *UserHandler) CreateUser(ctx *xhttp.RequestCtx) {
	var req model.UserCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	user, err := h.users.Create(ctx, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, user)
}

func (h *UserHandler) GetUser(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	user, err := h.users.Get(ctx, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, user)
}

func (h *UserHandler) UpdateUser(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.UserUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	user, err := h.users.Update(ctx, id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, user)
}

func (h *UserHandler) DeleteUser(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	if err := h.users.Delete(ctx, id); err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, messageResponse{Message: "user deactivated"})
}

func (h *UserHandler) ListPending(ctx *xhttp.RequestCtx) {
	items, total, err := h.approvals.ListPending(ctx, pageFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.User]{Items: items, Total: total})
}

func (h *UserHandler) Approve(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	user, err := h.approvals.Approve(ctx, actorID(ctx), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, user)
}

func (h *UserHandler) Reject(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	// the reason is optional, so is the body
	var req model.RejectRequest
	if len(ctx.PostBody()) > 0 {
		if err := readJSON(ctx, &req); err != nil {
			fail(ctx, err)
			return
		}
	}
	user, err := h.approvals.Reject(ctx, actorID(ctx), id, req.Reason)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, user)
}
