package model

import (
	"time"
)

type UserRole string

const (
	RoleSystemAdmin UserRole = "SYSTEM_ADMIN"
	RoleNormalUser  UserRole = "NORMAL_USER"
	RoleStoreOwner  UserRole = "STORE_OWNER"
)

// Roles lists every valid role in display order.
var Roles = []UserRole{RoleSystemAdmin, RoleNormalUser, RoleStoreOwner}

func (r UserRole) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(60);not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Address      string    `gorm:"type:varchar(400);not null" json:"address"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'NORMAL_USER';index" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Stores []Store `gorm:"foreignKey:OwnerID" json:"stores,omitempty"` // stores owned (STORE_OWNER only)
}

func (User) TableName() string {
	return "users"
}
