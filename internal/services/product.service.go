package services

import (
	"context"
	"strings"

	"github.com/nimasrn/marketplace/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}

type ManufacturerLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Manufacturer, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Manufacturer, error)
}

type ProductService struct {
	products      ProductRepository
	manufacturers ManufacturerLookup
}

func NewProductService(products ProductRepository, manufacturers ManufacturerLookup) *ProductService {
	return &ProductService{products: products, manufacturers: manufacturers}
}

func (s *ProductService) Create(ctx context.Context, req model.ProductCreateRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.manufacturers.GetByID(ctx, req.ManufacturerID); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, &model.Product{
		ManufacturerID: req.ManufacturerID,
		Name:           strings.TrimSpace(req.Name),
		Category:       strings.TrimSpace(req.Category),
		Description:    req.Description,
		Price:          req.Price,
		Stock:          req.Stock,
		IsActive:       true,
	})
}

func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error) {
	return s.products.List(ctx, f)
}

// Search only returns products that can currently be bought.
func (s *ProductService) Search(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error) {
	f.Query = strings.TrimSpace(f.Query)
	f.ActiveOnly = true
	return s.products.List(ctx, f)
}

// ListByManufacturerUser lists the catalog of the manufacturer owned by userID.
func (s *ProductService) ListByManufacturerUser(ctx context.Context, userID int64, page model.Page) ([]*model.Product, int64, error) {
	m, err := s.manufacturers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.products.List(ctx, model.ProductFilter{ManufacturerID: &m.ID, Page: page})
}

func (s *ProductService) Update(ctx context.Context, id int64, req model.ProductUpdateRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) > 0 {
		if err := s.products.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.products.GetByID(ctx, id)
}

// Delete deactivates the product; purchase and order rows keep pointing at it.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.products.UpdateFields(ctx, id, map[string]any{"is_active": false})
}
