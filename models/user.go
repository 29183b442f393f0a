package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleManager      Role = "manager"
	RoleDeliveryCrew Role = "delivery_crew"
)

func (r Role) IsValid() bool {
	return r == RoleManager || r == RoleDeliveryCrew
}

// ParseRole maps the group names used on the HTTP surface to roles.
func ParseRole(name string) (Role, bool) {
	switch name {
	case "manager", "Manager":
		return RoleManager, true
	case "delivery_crew", "delivery-crew", "Delivery Crew":
		return RoleDeliveryCrew, true
	}
	return "", false
}

type User struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	Password   string     `db:"password" json:"-"`
	Roles      []Role     `db:"-" json:"roles"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at,omitempty"`
}

func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
