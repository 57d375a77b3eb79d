package model

import "time"

const (
	AuditUserApproved = "USER_APPROVED"
	AuditUserRejected = "USER_REJECTED"
	AuditPinUnlocked  = "PIN_UNLOCKED"
	AuditPinReset     = "PIN_RESET"
	AuditBalanceSet   = "BALANCE_UPDATED"
	AuditOrderAssign  = "ORDER_ASSIGNED"
)

type AuditLog struct {
	ID         int64     `json:"id"`
	ActorID    *int64    `json:"actorId,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   int64     `json:"entityId"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type AuditFilter struct {
	EntityType string
	EntityID   *int64
	Page
}
