package repository

import (
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/shopspring/decimal"
)

type ProductEntity struct {
	ID             int64               `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	ManufacturerID int64               `db:"manufacturer_id" gorm:"column:manufacturer_id;not null;index"`
	Manufacturer   *ManufacturerEntity `gorm:"foreignKey:ManufacturerID;references:ID;constraint:OnDelete:RESTRICT"`
	Name           string              `db:"name"            gorm:"column:name;not null"`
	Category       string              `db:"category"        gorm:"column:category;not null;default:'';index"`
	Description    string              `db:"description"     gorm:"column:description;not null;default:''"`
	Price          decimal.Decimal     `db:"price"           gorm:"column:price;type:decimal(14,2);not null"`
	Stock          int                 `db:"stock"           gorm:"column:stock;not null;default:0;check:stock >= 0"`
	IsActive       bool                `db:"is_active"       gorm:"column:is_active;not null"`
	CreatedAt      time.Time           `db:"created_at"      gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `db:"updated_at"      gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductEntity) TableName() string {
	return "products"
}

func toProductEntity(m *model.Product) *ProductEntity {
	if m == nil {
		return nil
	}
	return &ProductEntity{
		ID:             m.ID,
		ManufacturerID: m.ManufacturerID,
		Name:           m.Name,
		Category:       m.Category,
		Description:    m.Description,
		Price:          m.Price,
		Stock:          m.Stock,
		IsActive:       m.IsActive,
	}
}

func toProductModel(e *ProductEntity) *model.Product {
	if e == nil {
		return nil
	}
	return &model.Product{
		ID:             e.ID,
		ManufacturerID: e.ManufacturerID,
		Name:           e.Name,
		Category:       e.Category,
		Description:    e.Description,
		Price:          e.Price,
		Stock:          e.Stock,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func toProductModels(entities []*ProductEntity) []*model.Product {
	models := make([]*model.Product, len(entities))
	for i, e := range entities {
		models[i] = toProductModel(e)
	}
	return models
}
