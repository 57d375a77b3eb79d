package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/nimasrn/marketplace/internal/model"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type PurchaseService interface {
	Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error)
	List(ctx context.Context, f model.PurchaseFilter) ([]*model.Purchase, int64, error)
}

type PurchaseHandler struct {
	svc PurchaseService
}

// RegisterPurchaseRoutes mounts both purchase entry points on the same service.
// Buying requires a caller that owns the account or is an admin.
func RegisterPurchaseRoutes(e *router.Group, h *PurchaseHandler, g *Guard) {
	e.POST("/purchases", g.Authenticated(h.CreatePurchase))
	e.POST("/transactions", g.Authenticated(h.CreatePurchase))
	e.GET("/purchases", h.ListPurchases)
}

func NewPurchaseHandler(svc PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		svc: svc,
	}
}

// purchaseRequest also takes the single item form {userId, productId, quantity}.
type purchaseRequest struct {
	UserID    int64                `json:"userId"`
	Items     []model.PurchaseItem `json:"items"`
	ProductID int64                `json:"productId"`
	Quantity  int                  `json:"quantity"`
}

func (h *PurchaseHandler) CreatePurchase(ctx *xhttp.RequestCtx) {
	var req purchaseRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	p := model.PurchaseRequest{
		UserID:         req.UserID,
		Items:          req.Items,
		IdempotencyKey: strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderIdempotencyKey))),
	}
	if len(p.Items) == 0 && req.ProductID != 0 {
		p.Items = []model.PurchaseItem{{ProductID: req.ProductID, Quantity: req.Quantity}}
	}
	if err := actingFor(ctx, p.UserID); err != nil {
		fail(ctx, err)
		return
	}

	res, err := h.svc.Purchase(ctx, p)
	if err != nil {
		fail(ctx, err)
		return
	}
	status := xhttp.StatusCreated
	if res.Replayed {
		status = xhttp.StatusOK
	}
	writeJSON(ctx, status, res)
}

func (h *PurchaseHandler) ListPurchases(ctx *xhttp.RequestCtx) {
	var err error
	f := model.PurchaseFilter{Page: pageFrom(ctx)}
	if f.UserID, err = queryInt64(ctx, "userId"); err != nil {
		fail(ctx, err)
		return
	}
	if f.TransactionID, err = queryInt64(ctx, "transactionId"); err != nil {
		fail(ctx, err)
		return
	}
	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Purchase]{Items: items, Total: total})
}
