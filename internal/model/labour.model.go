package model

import (
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
)

type LabourStatus string

const (
	LabourAvailable LabourStatus = "AVAILABLE"
	LabourAssigned  LabourStatus = "ASSIGNED"
	LabourBusy      LabourStatus = "BUSY"
)

type AssignTargetType string

const (
	TargetManufacturer AssignTargetType = "MANUFACTURER"
	TargetTruckOwner   AssignTargetType = "TRUCK_OWNER"
)

type ActingLabour struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	PhoneNumber    string            `json:"phoneNumber"`
	Skill          string            `json:"skill,omitempty"`
	Status         LabourStatus      `json:"status"`
	AssignedToID   *int64            `json:"assignedToId,omitempty"`
	AssignedToType *AssignTargetType `json:"assignedToType,omitempty"`
	AssignedAt     *time.Time        `json:"assignedAt,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// AssignedTo reports whether the labour is currently assigned to the given target.
func (l *ActingLabour) AssignedTo(targetType AssignTargetType, targetID int64) bool {
	return l.AssignedToID != nil && l.AssignedToType != nil &&
		*l.AssignedToID == targetID && *l.AssignedToType == targetType
}

type LabourCreateRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Skill       string `json:"skill"`
}

func (p LabourCreateRequest) Validate() error {
	if err := required("name", p.Name); err != nil {
		return err
	}
	return required("phoneNumber", p.PhoneNumber)
}

type LabourUpdateRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
	Skill       *string `json:"skill"`
}

type LabourAssignRequest struct {
	TargetID   int64            `json:"targetId"`
	TargetType AssignTargetType `json:"targetType"`
}

func (p LabourAssignRequest) Validate() error {
	if err := positiveID("targetId", p.TargetID); err != nil {
		return err
	}
	if p.TargetType != TargetManufacturer && p.TargetType != TargetTruckOwner {
		return apperr.New(apperr.KindValidation, "targetType must be MANUFACTURER or TRUCK_OWNER")
	}
	return nil
}

type LabourFilter struct {
	Status         *LabourStatus
	AssignedToID   *int64
	AssignedToType *AssignTargetType
	Page
}
