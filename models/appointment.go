package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus is the two-state slot machine: a slot is either open
// for booking or held by exactly one patient.
type AppointmentStatus string

const (
	StatusAvailable   AppointmentStatus = "DISPONIVEL"
	StatusUnavailable AppointmentStatus = "INDISPONIVEL"
)

// Appointment is one bookable time slot belonging to a professional.
// UserID is nil while the slot is open; ProfessionalID and
// AppointmentTime never change after creation.
type Appointment struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	ProfessionalID  uint              `json:"professional_id" gorm:"not null"`
	Professional    *Professional     `json:"professional,omitempty" gorm:"foreignKey:ProfessionalID"`
	UserID          *uint             `json:"user_id"`
	User            *User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	AppointmentTime time.Time         `json:"appointment_time" gorm:"not null"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Claim binds the slot to a patient and marks it unavailable.
func (a *Appointment) Claim(userID uint) {
	a.UserID = &userID
	a.Status = StatusUnavailable
}

// Release clears the occupant and reopens the slot. Releasing an already
// open slot leaves it unchanged.
func (a *Appointment) Release() {
	a.UserID = nil
	a.Status = StatusAvailable
}

// Booked reports whether the slot is currently held.
func (a *Appointment) Booked() bool {
	return a.UserID != nil
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusAvailable
	}
	return a.checkStatePairing()
}

func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	if a.Status == "" {
		return nil
	}
	return a.checkStatePairing()
}

// checkStatePairing rejects any row where the status and the occupant
// disagree: DISPONIVEL must have no user, INDISPONIVEL must have one.
func (a *Appointment) checkStatePairing() error {
	switch a.Status {
	case StatusAvailable:
		if a.UserID != nil {
			return fmt.Errorf("available appointment cannot have a user")
		}
	case StatusUnavailable:
		if a.UserID == nil {
			return fmt.Errorf("unavailable appointment must have a user")
		}
	default:
		return fmt.Errorf("unknown appointment status %q", a.Status)
	}
	return nil
}
