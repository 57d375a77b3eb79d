package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/marketplace/internal/model"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
)

type AgentService interface {
	Create(ctx context.Context, req model.AgentRequest) (*model.Agent, error)
	Get(ctx context.Context, id int64) (*model.Agent, error)
	List(ctx context.Context, page model.Page) ([]*model.Agent, int64, error)
	Update(ctx context.Context, id int64, req model.AgentRequest) (*model.Agent, error)
	Delete(ctx context.Context, id int64) error
}

type AgentHandler struct {
	svc AgentService
}

func RegisterAgentRoutes(e *router.Group, h *AgentHandler) {
	e.GET("/agents", h.ListAgents)
	e.POST("/agents", h.CreateAgent)
	e.GET("/agents/{id}", h.GetAgent)
	e.PUT("/agents/{id}", h.UpdateAgent)
	e.DELETE("/agents/{id}", h.DeleteAgent)
}

func NewAgentHandler(svc AgentService) *AgentHandler {
	return &AgentHandler{
		svc: svc,
	}
}

func (h *AgentHandler) ListAgents(ctx *xhttp.RequestCtx) {
	items, total, err := h.svc.List(ctx, pageFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Agent]{Items: items, Total: total})
}

func (h *AgentHandler) CreateAgent(ctx *xhttp.RequestCtx) {
	var req model.AgentRequest
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

func (h *AgentHandler) GetAgent(ctx *xhttp.RequestCtx) {
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

func (h *AgentHandler) UpdateAgent(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.AgentRequest
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

func (h *AgentHandler) DeleteAgent(ctx *xhttp.RequestCtx) {
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
