package user

import (
	"time"
)

type Role int

const (
	RoleAdmin  Role = 1
	RoleEditor Role = 2
	RoleUser   Role = 3
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleUser
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleEditor:
		return "editor"
	case RoleUser:
		return "user"
	}
	return "unknown"
}

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash   string    `gorm:"column:password;size:128;not null" json:"-"`
	Role           Role      `gorm:"column:role_id;not null;default:3" json:"role_id"`
	ProfilePicture *string   `gorm:"size:500" json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Changes lists the fields of an update. Nil fields are left untouched.
type Changes struct {
	Name           *string
	Email          *string
	PasswordHash   *string
	Role           *Role
	ProfilePicture *string
}

func (c Changes) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Name != nil {
		cols["name"] = *c.Name
	}
	if c.Email != nil {
		cols["email"] = *c.Email
	}
	if c.PasswordHash != nil {
		cols["password"] = *c.PasswordHash
	}
	if c.Role != nil {
		cols["role_id"] = *c.Role
	}
	if c.ProfilePicture != nil {
		cols["profile_picture"] = *c.ProfilePicture
	}
	return cols
}
