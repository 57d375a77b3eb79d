package repository

import (
	"time"

	"github.com/nimasrn/marketplace/internal/model"
)

type ActingLabourEntity struct {
	ID             int64      `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	Name           string     `db:"name"             gorm:"column:name;not null"`
	PhoneNumber    string     `db:"phone_number"     gorm:"column:phone_number;not null;uniqueIndex"`
	Skill          string     `db:"skill"            gorm:"column:skill;not null;default:''"`
	Status         string     `db:"status"           gorm:"column:status;not null;index"`
	AssignedToID   *int64     `db:"assigned_to_id"   gorm:"column:assigned_to_id;index:idx_labour_assignee"`
	AssignedToType *string    `db:"assigned_to_type" gorm:"column:assigned_to_type;index:idx_labour_assignee"`
	AssignedAt     *time.Time `db:"assigned_at"      gorm:"column:assigned_at"`
	CreatedAt      time.Time  `db:"created_at"       gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `db:"updated_at"       gorm:"column:updated_at;autoUpdateTime"`
}

func (ActingLabourEntity) TableName() string {
	return "acting_labours"
}

func toLabourModel(e *ActingLabourEntity) *model.ActingLabour {
	if e == nil {
		return nil
	}
	m := &model.ActingLabour{
		ID:           e.ID,
		Name:         e.Name,
		PhoneNumber:  e.PhoneNumber,
		Skill:        e.Skill,
		Status:       model.LabourStatus(e.Status),
		AssignedToID: e.AssignedToID,
		AssignedAt:   e.AssignedAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.AssignedToType != nil {
		t := model.AssignTargetType(*e.AssignedToType)
		m.AssignedToType = &t
	}
	return m
}
