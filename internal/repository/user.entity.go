package repository

import (
	"strings"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/shopspring/decimal"
)

type UserEntity struct {
	ID              int64              `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	PhoneNumber     string             `db:"phone_number"     gorm:"column:phone_number;not null;uniqueIndex"`
	UserType        string             `db:"user_type"        gorm:"column:user_type;not null;default:''"`
	Roles           string             `db:"roles"            gorm:"column:roles;not null;default:''"`
	Status          string             `db:"status"           gorm:"column:status;not null;default:PENDING;index"`
	Balance         decimal.Decimal    `db:"balance"          gorm:"column:balance;type:decimal(14,2);not null;default:0"`
	PinHash         *string            `db:"pin_hash"         gorm:"column:pin_hash"`
	PinAttempts     int                `db:"pin_attempts"     gorm:"column:pin_attempts;not null;default:0"`
	PinLockedUntil  *time.Time         `db:"pin_locked_until" gorm:"column:pin_locked_until"`
	LastLogin       *time.Time         `db:"last_login"       gorm:"column:last_login"`
	ApprovedAt      *time.Time         `db:"approved_at"      gorm:"column:approved_at"`
	RejectionReason *string            `db:"rejection_reason" gorm:"column:rejection_reason"`
	Profile         *UserProfileEntity `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time          `db:"created_at"       gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `db:"updated_at"       gorm:"column:updated_at;autoUpdateTime"`
}

func (UserEntity) TableName() string {
	return "users"
}

type UserProfileEntity struct {
	ID      int64   `db:"id"      gorm:"primaryKey;autoIncrement;column:id"`
	UserID  int64   `db:"user_id" gorm:"column:user_id;not null;uniqueIndex"`
	Name    string  `db:"name"    gorm:"column:name;not null"`
	Email   *string `db:"email"   gorm:"column:email;uniqueIndex"`
	Address string  `db:"address" gorm:"column:address;not null;default:''"`
	Avatar  string  `db:"avatar"  gorm:"column:avatar;not null;default:''"`
}

func (UserProfileEntity) TableName() string {
	return "user_profiles"
}

func joinRoles(roles []string) string {
	clean := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" {
			clean = append(clean, r)
		}
	}
	return strings.Join(clean, ",")
}

func splitRoles(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	e := &UserEntity{
		ID:             m.ID,
		PhoneNumber:    m.PhoneNumber,
		UserType:       m.UserType,
		Roles:          joinRoles(m.Roles),
		Status:         string(m.Status),
		Balance:        m.Balance,
		PinAttempts:    m.PinAttempts,
		PinLockedUntil: m.PinLockedUntil,
		LastLogin:      m.LastLogin,
		ApprovedAt:     m.ApprovedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.PinHash != "" {
		e.PinHash = &m.PinHash
	}
	if m.RejectionReason != "" {
		e.RejectionReason = &m.RejectionReason
	}
	if m.Profile != nil {
		e.Profile = toUserProfileEntity(m.Profile)
	}
	if e.Status == "" {
		e.Status = string(model.UserStatusPending)
	}
	return e
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	m := &model.User{
		ID:             e.ID,
		PhoneNumber:    e.PhoneNumber,
		UserType:       e.UserType,
		Roles:          splitRoles(e.Roles),
		Status:         model.UserStatus(e.Status),
		Balance:        e.Balance,
		PinAttempts:    e.PinAttempts,
		PinLockedUntil: e.PinLockedUntil,
		LastLogin:      e.LastLogin,
		ApprovedAt:     e.ApprovedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if e.PinHash != nil {
		m.PinHash = *e.PinHash
		m.HasPin = true
	}
	if e.RejectionReason != nil {
		m.RejectionReason = *e.RejectionReason
	}
	if e.Profile != nil {
		m.Profile = toUserProfileModel(e.Profile)
	}
	return m
}

func toUserModels(entities []*UserEntity) []*model.User {
	models := make([]*model.User, len(entities))
	for i, e := range entities {
		models[i] = toUserModel(e)
	}
	return models
}

func toUserProfileEntity(m *model.UserProfile) *UserProfileEntity {
	if m == nil {
		return nil
	}
	e := &UserProfileEntity{
		UserID:  m.UserID,
		Name:    m.Name,
		Address: m.Address,
		Avatar:  m.Avatar,
	}
	if m.Email != "" {
		e.Email = &m.Email
	}
	return e
}

func toUserProfileModel(e *UserProfileEntity) *model.UserProfile {
	if e == nil {
		return nil
	}
	m := &model.UserProfile{
		UserID:  e.UserID,
		Name:    e.Name,
		Address: e.Address,
		Avatar:  e.Avatar,
	}
	if e.Email != nil {
		m.Email = *e.Email
	}
	return m
}
