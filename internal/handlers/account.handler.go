package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/nimasrn/marketplace/internal/model"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
)

type BalanceService interface {
	UpdateBalance(ctx context.Context, actorID *int64, req model.BalanceUpdateRequest) (*model.Transaction, error)
	Recharge(ctx context.Context, req model.RechargeRequest) (*model.RechargeResult, error)
	ListTransactions(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
	ListRecharges(ctx context.Context, userID int64, page model.Page) ([]*model.Recharge, int64, error)
}

type PinService interface {
	SetPin(ctx context.Context, userID int64, pin string) error
	VerifyPin(ctx context.Context, userID int64, pin string) error
	ResetPin(ctx context.Context, actorID *int64, userID int64) error
	Unlock(ctx context.Context, actorID *int64, userID int64) error
}

// AccountHandler serves the money and PIN routes nested under a user.
type AccountHandler struct {
	balances BalanceService
	pins     PinService
}

func RegisterAccountRoutes(e *router.Group, h *AccountHandler, g *Guard) {
	e.PATCH("/users/{id}/balance", g.Admin(h.UpdateBalance))
	e.POST("/users/{id}/recharge", g.Admin(h.Recharge))
	e.GET("/users/{id}/transactions", h.ListTransactions)
	e.GET("/users/{id}/recharges", h.ListRecharges)
	e.POST("/users/{id}/set-pin", h.SetPin)
	e.POST("/users/{id}/verify-pin", h.VerifyPin)
	e.POST("/users/{id}/reset-pin", g.Admin(h.ResetPin))
	e.POST("/users/{id}/unlock", g.Admin(h.Unlock))
}

func NewAccountHandler(balances BalanceService, pins PinService) *AccountHandler {
	return &AccountHandler{
		balances: balances,
		pins:     pins,
	}
}

func (h *AccountHandler) UpdateBalance(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.BalanceUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	req.UserID = id
	req.Operation = model.BalanceOperation(strings.ToLower(string(req.Operation)))

	txn, err := h.balances.UpdateBalance(ctx, actorID(ctx), req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, txn)
}

func (h *AccountHandler) Recharge(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.RechargeRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	req.UserID = id

	res, err := h.balances.Recharge(ctx, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, res)
}

func (h *AccountHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	f := model.TransactionFilter{UserID: &id, Page: pageFrom(ctx)}
	if v := query(ctx, "type"); v != "" {
		t := model.TransactionType(v)
		f.Type = &t
	}
	if f.From, err = queryTime(ctx, "from"); err != nil {
		fail(ctx, err)
		return
	}
	if f.To, err = queryTime(ctx, "to"); err != nil {
		fail(ctx, err)
		return
	}

	items, total, err := h.balances.ListTransactions(ctx, f)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Transaction]{Items: items, Total: total})
}

func (h *AccountHandler) ListRecharges(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	items, total, err := h.balances.ListRecharges(ctx, id, pageFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Recharge]{Items: items, Total: total})
}

func (h *AccountHandler) SetPin(ctx *xhttp.RequestCtx) {
	id, req, ok := h.pinRequest(ctx)
	if !ok {
		return
	}
	if err := h.pins.SetPin(ctx, id, req.Pin); err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, messageResponse{Message: "pin set"})
}

func (h *AccountHandler) VerifyPin(ctx *xhttp.RequestCtx) {
	id, req, ok := h.pinRequest(ctx)
	if !ok {
		return
	}
	if err := h.pins.VerifyPin(ctx, id, req.Pin); err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, messageResponse{Message: "pin verified"})
}

func (h *AccountHandler) pinRequest(ctx *xhttp.RequestCtx) (int64, model.PinRequest, bool) {
	var req model.PinRequest
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return 0, req, false
	}
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return 0, req, false
	}
	return id, req, true
}

func (h *AccountHandler) ResetPin(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	if err := h.pins.ResetPin(ctx, actorID(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, messageResponse{Message: "pin reset"})
}

func (h *AccountHandler) Unlock(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	if err := h.pins.Unlock(ctx, actorID(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, messageResponse{Message: "pin unlocked"})
}
