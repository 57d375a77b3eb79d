package repository

import (
	"context"
	"strings"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/pg"
	"gorm.io/gorm"
)

type ProductRepository struct {
	*pg.DB
}

func NewProductRepository(db *pg.DB) *ProductRepository {
	return &ProductRepository{
		db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	entity := toProductEntity(p)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	return toProductModel(entity), nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var entity ProductEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translate(err, ErrProductNotFound, nil)
	}
	return toProductModel(&entity), nil
}

// GetByIDs returns the products keyed by id. Missing ids are simply absent.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error) {
	var entities []*ProductEntity
	if err := r.Write(ctx).Where("id IN ?", ids).Find(&entities).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]*model.Product, len(entities))
	for _, e := range entities {
		out[e.ID] = toProductModel(e)
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context, f model.ProductFilter) ([]*model.Product, int64, error) {
	q := r.Read(ctx).Model(&ProductEntity{})
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.Category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(f.Category))
	}
	if f.ManufacturerID != nil {
		q = q.Where("manufacturer_id = ?", *f.ManufacturerID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	var entities []*ProductEntity
	if err := paginate(q.Order("id DESC"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return toProductModels(entities), total, nil
}

func (r *ProductRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.Write(ctx).Model(&ProductEntity{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStock removes quantity units from an active product. The row only
// changes while enough stock remains, so stock can never go negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	res := r.Write(ctx).
		Model(&ProductEntity{}).
		Where("id = ? AND is_active = ? AND stock >= ?", id, true, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOutOfStock
	}
	return nil
}
