package repository

import (
	"time"

	"github.com/nimasrn/marketplace/internal/model"
)

type AgentEntity struct {
	ID        int64       `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64       `db:"user_id"    gorm:"column:user_id;not null;uniqueIndex"`
	User      *UserEntity `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Region    string      `db:"region"     gorm:"column:region;not null;default:''"`
	CreatedAt time.Time   `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (AgentEntity) TableName() string {
	return "agents"
}

type ManufacturerEntity struct {
	ID          int64       `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	UserID      int64       `db:"user_id"      gorm:"column:user_id;not null;uniqueIndex"`
	User        *UserEntity `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	CompanyName string      `db:"company_name" gorm:"column:company_name;not null;default:''"`
	GSTNumber   string      `db:"gst_number"   gorm:"column:gst_number;not null;default:''"`
	IsVerified  bool        `db:"is_verified"  gorm:"column:is_verified;not null;default:false"`
	CreatedAt   time.Time   `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (ManufacturerEntity) TableName() string {
	return "manufacturers"
}

type EmployeeEntity struct {
	ID             int64       `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	UserID         int64       `db:"user_id"         gorm:"column:user_id;not null;uniqueIndex"`
	User           *UserEntity `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	ManufacturerID *int64      `db:"manufacturer_id" gorm:"column:manufacturer_id;index"`
	Role           string      `db:"role"            gorm:"column:role;not null;index"`
	Designation    string      `db:"designation"     gorm:"column:designation;not null;default:''"`
	CreatedAt      time.Time   `db:"created_at"      gorm:"column:created_at;autoCreateTime"`
}

func (EmployeeEntity) TableName() string {
	return "employees"
}

func toAgentModel(e *AgentEntity) *model.Agent {
	if e == nil {
		return nil
	}
	return &model.Agent{
		ID:        e.ID,
		UserID:    e.UserID,
		Region:    e.Region,
		User:      toUserModel(e.User),
		CreatedAt: e.CreatedAt,
	}
}

func toManufacturerModel(e *ManufacturerEntity) *model.Manufacturer {
	if e == nil {
		return nil
	}
	return &model.Manufacturer{
		ID:          e.ID,
		UserID:      e.UserID,
		CompanyName: e.CompanyName,
		GSTNumber:   e.GSTNumber,
		IsVerified:  e.IsVerified,
		User:        toUserModel(e.User),
		CreatedAt:   e.CreatedAt,
	}
}

func toEmployeeModel(e *EmployeeEntity) *model.Employee {
	if e == nil {
		return nil
	}
	return &model.Employee{
		ID:             e.ID,
		UserID:         e.UserID,
		ManufacturerID: e.ManufacturerID,
		Role:           e.Role,
		Designation:    e.Designation,
		User:           toUserModel(e.User),
		CreatedAt:      e.CreatedAt,
	}
}
