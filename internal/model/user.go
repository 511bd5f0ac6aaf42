package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMaster UserRole = "master"
	UserRoleClient UserRole = "client"
)

// User is a managed account: either a service provider (admin/master) whose
// calendar can be booked, or a registered client.
type User struct {
	Base
	Name         string   `db:"name" json:"name"`
	Email        string   `db:"email" json:"email"`
	Phone        string   `db:"phone" json:"phone,omitempty"`
	Role         UserRole `db:"role" json:"role"`
	Active       bool     `db:"active" json:"active"`
	PasswordHash string   `db:"password_hash" json:"-"`
}

func (u *User) IsProvider() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleMaster
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,min=10,max=20"`
	Role     string `json:"role" binding:"required,oneof=admin master client"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Active   *bool  `json:"active"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=120"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Phone  *string `json:"phone" binding:"omitempty,min=10,max=20"`
	Role   *string `json:"role" binding:"omitempty,oneof=admin master client"`
	Active *bool   `json:"active"`
}

// Session is the authenticated caller, extracted from the bearer token and
// carried through the request context. There is exactly one of these per
// request; handlers and services never reach for ambient auth state.
type Session struct {
	UserID uuid.UUID
	Email  string
	Role   UserRole
	Expiry time.Time
}

func (s *Session) IsAdmin() bool {
	return s != nil && (s.Role == UserRoleAdmin || s.Role == UserRoleMaster)
}
