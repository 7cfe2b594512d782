package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

var Roles = []string{RoleAdmin, RoleManager, RoleEmployee}

var Departments = []string{
	"QA", "Frontend", "Backend", "PM", "HR",
	"Marketing", "Design", "DevOps", "Operations", "Network",
}

type User struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Email        string              `json:"email" bson:"email"`
	PasswordHash string              `json:"-" bson:"password"`
	Name         string              `json:"name" bson:"name"`
	Role         string              `json:"role" bson:"role"`
	Department   string              `json:"department" bson:"department"`
	Designation  string              `json:"designation" bson:"designation"`
	AvatarID     *primitive.ObjectID `json:"avatar_id,omitempty" bson:"avatar_id,omitempty"`
	IsActive     bool                `json:"is_active" bson:"is_active"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	LastLoginAt  time.Time           `json:"last_login_at" bson:"last_login_at"`
}

// Principal is the authenticated actor of a request.
type Principal struct {
	ID         primitive.ObjectID `json:"id"`
	Email      string             `json:"email"`
	Name       string             `json:"name"`
	Role       string             `json:"role"`
	Department string             `json:"department"`
	// Token the request was authenticated with; set by the auth middleware.
	TokenID        string    `json:"-"`
	TokenExpiresAt time.Time `json:"-"`
}

func (u *User) Principal() *Principal {
	return &Principal{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		Department: u.Department,
	}
}

func ValidRole(role string) bool {
	return contains(Roles, role)
}

func ValidDepartment(department string) bool {
	return contains(Departments, department)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
