package models

import "time"

// Role 用户角色，封闭枚举
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// rank 角色特权顺序 user < moderator < admin
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleModerator:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.rank() > 0
}

// AtLeast reports whether r carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return r.rank() >= other.rank()
}

type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string  `gorm:"size:100;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;size:150;not null" json:"email"`
	Password     string  `gorm:"not null" json:"-"`
	Role         Role    `gorm:"size:16;default:user;not null" json:"role"`
	IsActive     bool    `gorm:"default:true;not null" json:"is_active"`
	RefreshToken *string `gorm:"size:512" json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
