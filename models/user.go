package models

import (
	"time"
)

type User struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	Username              string     `json:"username" gorm:"unique;not null"`
	Password              string     `json:"-"`
	Email                 *string    `json:"email,omitempty" gorm:"unique"`
	Role                  Role       `json:"role" gorm:"not null;default:PATIENT"`
	RecoveryCode          *string    `json:"-"`
	RecoveryCodeExpiresAt *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Professional is the practice profile linked one-to-one with a User of
// role PROFESSIONAL. It is only ever created by an admin, together with
// its user, in a single transaction.
type Professional struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"unique;not null"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
