package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/models"
	"github.com/agendafacil/agenda-api/utils"
)

// Jobs owns the background schedule: appointment reminders and recovery
// code cleanup.
type Jobs struct {
	db     *gorm.DB
	mailer utils.Sender
	cron   *cron.Cron
}

func NewJobs(db *gorm.DB, mailer utils.Sender) *Jobs {
	return &Jobs{db: db, mailer: mailer, cron: cron.New()}
}

// Start registers and launches the scheduled jobs.
func (j *Jobs) Start() error {
	// Check every minute for appointments starting in about an hour.
	if _, err := j.cron.AddFunc("* * * * *", j.sendAppointmentReminders); err != nil {
		return err
	}
	// Drop expired recovery codes hourly.
	if _, err := j.cron.AddFunc("0 * * * *", j.cleanupRecoveryCodes); err != nil {
		return err
	}
	j.cron.Start()
	log.Println("Cron job scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for running jobs.
func (j *Jobs) Stop() {
	<-j.cron.Stop().Done()
}

// sendAppointmentReminders mails every patient whose booked slot starts
// in roughly one hour.
func (j *Jobs) sendAppointmentReminders() {
	now := time.Now()
	startWindow := now.Add(55 * time.Minute)
	endWindow := now.Add(65 * time.Minute)

	var appointments []models.Appointment
	err := j.db.Preload("User").Preload("Professional").
		Where("status = ? AND appointment_time BETWEEN ? AND ?", models.StatusUnavailable, startWindow, endWindow).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Error fetching appointments for reminders: %v", err)
		return
	}

	for _, appointment := range appointments {
		if appointment.User == nil || appointment.User.Email == nil || appointment.Professional == nil {
			continue
		}
		err := j.mailer.SendReminder(
			*appointment.User.Email,
			appointment.User.Username,
			appointment.Professional.Name,
			appointment.AppointmentTime.Format("02/01/2006 15:04"),
		)
		if err != nil {
			log.Printf("Failed to send reminder for appointment %d: %v", appointment.ID, err)
			continue
		}
		log.Printf("Sent reminder for appointment %d to %s", appointment.ID, *appointment.User.Email)
	}
}

// cleanupRecoveryCodes clears recovery codes past their expiry.
func (j *Jobs) cleanupRecoveryCodes() {
	result := j.db.Model(&models.User{}).
		Where("recovery_code IS NOT NULL AND recovery_code_expires_at < ?", time.Now()).
		Updates(map[string]interface{}{
			"recovery_code":            nil,
			"recovery_code_expires_at": nil,
		})
	if result.Error != nil {
		log.Printf("Error cleaning up recovery codes: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Cleared %d expired recovery codes", result.RowsAffected)
	}
}
