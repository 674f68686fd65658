package models

import (
	"fmt"
	"strings"
	"time"
)

// Role tags an identity with the part it plays in the internship workflow.
type Role string

const (
	RoleStudent    Role = "student"
	RoleHOD        Role = "hod"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Roles lists every recognised role tag.
var Roles = []Role{RoleStudent, RoleHOD, RoleSupervisor, RoleAdmin}

// ParseRole normalises a raw role tag.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether r is one of the recognised roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleHOD, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

func (r Role) IsStudent() bool    { return r == RoleStudent }
func (r Role) IsHOD() bool        { return r == RoleHOD }
func (r Role) IsSupervisor() bool { return r == RoleSupervisor }
func (r Role) IsAdmin() bool      { return r == RoleAdmin }

// DashboardPath returns the landing page for the role.
func (r Role) DashboardPath() string {
	if !r.Valid() {
		return "/"
	}
	return "/" + string(r) + "/dashboard"
}

// User is the authentication-bearing identity record shared by every role.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FullName     string     `gorm:"size:255;not null" json:"full_name"`
	Phone        string     `gorm:"size:32" json:"phone"`
	Role         Role       `gorm:"column:user_type;size:20;not null;index" json:"user_type"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

func (u User) String() string {
	return fmt.Sprintf("<User %s>", u.Email)
}
