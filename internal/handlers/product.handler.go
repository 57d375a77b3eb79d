package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/marketplace/internal/model"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
)

type ProductService interface {
	Create(ctx context.Context, req model.ProductCreateRequest) (*model.Product, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error)
	Search(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error)
	ListByManufacturerUser(ctx context.Context, userID int64, page model.Page) ([]*model.Product, int64, error)
	Update(ctx context.Context, id int64, req model.ProductUpdateRequest) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
}

type ProductHandler struct {
	svc ProductService
}

func RegisterProductRoutes(e *router.Group, h *ProductHandler) {
	e.GET("/products", h.ListProducts)
	e.POST("/products", h.CreateProduct)
	e.GET("/products/search", h.SearchProducts)
	e.GET("/products/manufacturer/{userId}", h.ListByManufacturer)
	e.GET("/products/{id}", h.GetProduct)
	e.PUT("/products/{id}", h.UpdateProduct)
	e.DELETE("/products/{id}", h.DeleteProduct)
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{
		svc: svc,
	}
}

func productFilter(ctx *xhttp.RequestCtx) (model.ProductFilter, error) {
	var err error
	f := model.ProductFilter{
		Query:    query(ctx, "q"),
		Category: query(ctx, "category"),
		Page:     pageFrom(ctx),
	}
	if f.ManufacturerID, err = queryInt64(ctx, "manufacturerId"); err != nil {
		return f, err
	}
	if f.MinPrice, err = queryDecimal(ctx, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryDecimal(ctx, "maxPrice"); err != nil {
		return f, err
	}
	f.ActiveOnly = query(ctx, "active") == "true"
	return f, nil
}

func (h *ProductHandler) ListProducts(ctx *xhttp.RequestCtx) {
	f, err := productFilter(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}
	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Product]{Items: items, Total: total})
}

func (h *ProductHandler) SearchProducts(ctx *xhttp.RequestCtx) {
	f, err := productFilter(ctx)
	if err != nil {
		fail(ctx, err)
		return
	}
	items, total, err := h.svc.Search(ctx, f)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Product]{Items: items, Total: total})
}

func (h *ProductHandler) ListByManufacturer(ctx *xhttp.RequestCtx) {
	userID, err := pathInt64(ctx, "userId")
	if err != nil {
		fail(ctx, err)
		return
	}
	items, total, err := h.svc.ListByManufacturerUser(ctx, userID, pageFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, listResponse[*model.Product]{Items: items, Total: total})
}

func (h *ProductHandler) CreateProduct(ctx *xhttp.RequestCtx) {
	var req model.ProductCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	p, err := h.svc.Create(ctx, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, p)
}

func (h *ProductHandler) GetProduct(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	p, err := h.svc.Get(ctx, id)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, p)
}

func (h *ProductHandler) UpdateProduct(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	var req model.ProductUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		fail(ctx, err)
		return
	}
	p, err := h.svc.Update(ctx, id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		fail(ctx, err)
		return
	}
	if err := h.svc.Delete(ctx, id); err != nil {
		fail(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, messageResponse{Message: "product deactivated"})
}
