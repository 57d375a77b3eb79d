package repository

import (
	"time"

	"github.com/nimasrn/marketplace/internal/model"
)

type AdminEntity struct {
	ID           int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	Email        string    `db:"email"          gorm:"column:email;not null;uniqueIndex"`
	Name         string    `db:"name"           gorm:"column:name;not null"`
	PasswordHash string    `db:"password_hash"  gorm:"column:password_hash;not null"`
	IsSuperAdmin bool      `db:"is_super_admin" gorm:"column:is_super_admin;not null;default:false"`
	CreatedAt    time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `db:"updated_at"     gorm:"column:updated_at;autoUpdateTime"`
}

func (AdminEntity) TableName() string {
	return "admins"
}

type AuditLogEntity struct {
	ID         int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	ActorID    *int64    `db:"actor_id"    gorm:"column:actor_id;index"`
	Action     string    `db:"action"      gorm:"column:action;not null"`
	EntityType string    `db:"entity_type" gorm:"column:entity_type;not null;index:idx_audit_entity"`
	EntityID   int64     `db:"entity_id"   gorm:"column:entity_id;not null;index:idx_audit_entity"`
	Details    string    `db:"details"     gorm:"column:details;not null;default:''"`
	CreatedAt  time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (AuditLogEntity) TableName() string {
	return "audit_logs"
}

func toAdminModel(e *AdminEntity) *model.Admin {
	if e == nil {
		return nil
	}
	return &model.Admin{
		ID:           e.ID,
		Email:        e.Email,
		Name:         e.Name,
		PasswordHash: e.PasswordHash,
		IsSuperAdmin: e.IsSuperAdmin,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toAuditModel(e *AuditLogEntity) *model.AuditLog {
	return &model.AuditLog{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		CreatedAt:  e.CreatedAt,
	}
}

// AllEntities lists every table owned by the repositories, in dependency order.
func AllEntities() []any {
	return []any{
		&UserEntity{}, &UserProfileEntity{},
		&AgentEntity{}, &ManufacturerEntity{}, &EmployeeEntity{},
		&ProductEntity{},
		&OrderEntity{}, &OrderItemEntity{},
		&TransactionEntity{}, &PurchaseEntity{}, &RechargeEntity{},
		&ActingLabourEntity{},
		&TruckEntity{}, &TripEntity{},
		&AdminEntity{}, &AuditLogEntity{},
	}
}
