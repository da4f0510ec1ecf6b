package scheduling

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/models"
)

// Service drives the slot lifecycle: a slot starts DISPONIVEL, a patient
// claims it (INDISPONIVEL), a release reopens it, and a delete removes it
// outright. All persistence goes through the injected gorm handle.
type Service struct {
	db *gorm.DB

	// strictClaim turns Claim into a conditional update that fails on an
	// already booked slot instead of displacing the occupant.
	strictClaim bool

	// uniqueSlotTimes rejects duplicate (professional, time) pairs on
	// create.
	uniqueSlotTimes bool
}

func NewService(db *gorm.DB, strictClaim, uniqueSlotTimes bool) *Service {
	return &Service{db: db, strictClaim: strictClaim, uniqueSlotTimes: uniqueSlotTimes}
}

// CreateSlot opens a new available slot for the professional.
func (s *Service) CreateSlot(professionalID uint, t time.Time) (*models.Appointment, error) {
	if t.IsZero() {
		return nil, ErrMissingTime
	}

	var professional models.Professional
	if err := s.db.First(&professional, professionalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}

	if s.uniqueSlotTimes {
		var count int64
		err := s.db.Model(&models.Appointment{}).
			Where("professional_id = ? AND appointment_time = ?", professionalID, t).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSlotTimeTaken
		}
	}

	appointment := models.Appointment{
		ProfessionalID:  professionalID,
		AppointmentTime: t,
		Status:          models.StatusAvailable,
	}
	if err := s.db.Create(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// ClaimSlot books the slot for the patient. In strict mode the update is
// guarded on the slot still being available, so a concurrent second claim
// fails with ErrSlotAlreadyBooked; otherwise the last writer wins, as a
// plain update, and any earlier occupant is displaced.
func (s *Service) ClaimSlot(id, patientID uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"user_id": patientID,
		"status":  models.StatusUnavailable,
	}

	tx := s.db.Model(&models.Appointment{}).Where("id = ?", id)
	if s.strictClaim {
		tx = tx.Where("status = ?", models.StatusAvailable)
	}
	result := tx.Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if s.strictClaim {
			// The slot existed above, so the availability guard is what
			// filtered it out.
			return nil, ErrSlotAlreadyBooked
		}
		return nil, ErrSlotNotFound
	}

	appointment.Claim(patientID)
	return &appointment, nil
}

// ReleaseSlot reopens the slot. Releasing an already open slot ends in
// the same state, so the operation is idempotent.
func (s *Service) ReleaseSlot(id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	err := s.db.Model(&models.Appointment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"user_id": nil,
		"status":  models.StatusAvailable,
	}).Error
	if err != nil {
		return nil, err
	}

	appointment.Release()
	return &appointment, nil
}

// DeleteSlot removes the slot no matter its state.
func (s *Service) DeleteSlot(id uint) error {
	result := s.db.Delete(&models.Appointment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// AvailableByProfessional lists the professional's open slots.
func (s *Service) AvailableByProfessional(professionalID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.
		Where("professional_id = ? AND status = ?", professionalID, models.StatusAvailable).
		Find(&appointments).Error
	return appointments, err
}

// ByProfessional lists all of the professional's slots with their
// occupants.
func (s *Service) ByProfessional(professionalID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.Preload("User").
		Where("professional_id = ?", professionalID).
		Find(&appointments).Error
	return appointments, err
}

// ByPatient lists the slots currently held by the patient.
func (s *Service) ByPatient(userID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.Where("user_id = ?", userID).Find(&appointments).Error
	return appointments, err
}
