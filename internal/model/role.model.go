package model

import "time"

type Agent struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Region    string    `json:"region,omitempty"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type AgentRequest struct {
	UserID int64  `json:"userId"`
	Region string `json:"region"`
}

func (p AgentRequest) Validate() error {
	return positiveID("userId", p.UserID)
}

type Manufacturer struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	CompanyName string    `json:"companyName"`
	GSTNumber   string    `json:"gstNumber,omitempty"`
	IsVerified  bool      `json:"isVerified"`
	User        *User     `json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ManufacturerRequest struct {
	UserID      int64  `json:"userId"`
	CompanyName string `json:"companyName"`
	GSTNumber   string `json:"gstNumber"`
	IsVerified  *bool  `json:"isVerified"`
}

func (p ManufacturerRequest) Validate() error {
	if err := positiveID("userId", p.UserID); err != nil {
		return err
	}
	return required("companyName", p.CompanyName)
}

type Employee struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	ManufacturerID *int64    `json:"manufacturerId,omitempty"`
	Role           string    `json:"role"`
	Designation    string    `json:"designation,omitempty"`
	User           *User     `json:"user,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (e *Employee) IsTruckOwner() bool {
	return e.Role == RoleTruckOwner
}

type EmployeeRequest struct {
	UserID      int64  `json:"userId"`
	Role        string `json:"role"`
	Designation string `json:"designation"`
}

func (p EmployeeRequest) Validate() error {
	if err := positiveID("userId", p.UserID); err != nil {
		return err
	}
	return required("role", p.Role)
}

type ManufacturerFilter struct {
	VerifiedOnly bool
	Page
}
