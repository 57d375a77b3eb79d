package repository

import (
	"context"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/pg"
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, ErrDuplicateReference)
	}

	return toTransactionModel(entity), nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	var entity TransactionEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translate(err, ErrTransactionNotFound, nil)
	}
	return toTransactionModel(&entity), nil
}

func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	var entity TransactionEntity
	if err := r.Write(ctx).Where("reference = ?", reference).First(&entity).Error; err != nil {
		return nil, translate(err, ErrTransactionNotFound, nil)
	}
	return toTransactionModel(&entity), nil
}

func (r *TransactionRepository) List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	q := r.Read(ctx).Model(&TransactionEntity{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Type != nil {
		q = q.Where("type = ?", string(*f.Type))
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	var entities []*TransactionEntity
	if err := paginate(q.Order("id DESC"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		out[i] = toTransactionModel(e)
	}
	return out, total, nil
}

type PurchaseRepository struct {
	*pg.DB
}

func NewPurchaseRepository(db *pg.DB) *PurchaseRepository {
	return &PurchaseRepository{
		db,
	}
}

func (r *PurchaseRepository) CreateBatch(ctx context.Context, purchases []*model.Purchase) ([]*model.Purchase, error) {
	entities := make([]*PurchaseEntity, len(purchases))
	for i, p := range purchases {
		entities[i] = toPurchaseEntity(p)
	}
	if err := r.Write(ctx).Create(&entities).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	out := make([]*model.Purchase, len(entities))
	for i, e := range entities {
		out[i] = toPurchaseModel(e)
	}
	return out, nil
}

func (r *PurchaseRepository) List(ctx context.Context, f model.PurchaseFilter) ([]*model.Purchase, int64, error) {
	q := r.Write(ctx).Model(&PurchaseEntity{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.TransactionID != nil {
		q = q.Where("transaction_id = ?", *f.TransactionID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	var entities []*PurchaseEntity
	if err := paginate(q.Order("id"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.Purchase, len(entities))
	for i, e := range entities {
		out[i] = toPurchaseModel(e)
	}
	return out, total, nil
}

type RechargeRepository struct {
	*pg.DB
}

func NewRechargeRepository(db *pg.DB) *RechargeRepository {
	return &RechargeRepository{
		db,
	}
}

func (r *RechargeRepository) Create(ctx context.Context, m *model.Recharge) (*model.Recharge, error) {
	entity := &RechargeEntity{
		UserID:        m.UserID,
		TransactionID: m.TransactionID,
		Amount:        m.Amount,
		PaymentMethod: string(m.PaymentMethod),
		RechargedBy:   m.RechargedBy,
		Notes:         m.Notes,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	return toRechargeModel(entity), nil
}

func (r *RechargeRepository) ListByUser(ctx context.Context, userID int64, page model.Page) ([]*model.Recharge, int64, error) {
	q := r.Read(ctx).Model(&RechargeEntity{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var entities []*RechargeEntity
	if err := paginate(q.Order("id DESC"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.Recharge, len(entities))
	for i, e := range entities {
		out[i] = toRechargeModel(e)
	}
	return out, total, nil
}
