package model

import (
	"github.com/lib/pq"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
)

// User represents a marketplace account
type User struct {
	Base
	Name               string             `json:"name" db:"name"`
	Email              string             `json:"email" db:"email"`
	PasswordHash       string             `json:"-" db:"password_hash"`
	Phone              string             `json:"phone" db:"phone"`
	Role               Role               `json:"role" db:"role"`
	IsVerified         bool               `json:"isVerified" db:"is_verified"`
	VerificationStatus VerificationStatus `json:"verificationStatus" db:"verification_status"`
	City               *string            `json:"city,omitempty" db:"city"`
	ServiceLocations   pq.StringArray     `json:"serviceLocations" db:"service_locations"`
}

// UserFilters represents user search parameters
type UserFilters struct {
	Role       Role
	IsVerified *bool
}
