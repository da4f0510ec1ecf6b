package scheduling

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agendafacil/agenda-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A pooled second connection to :memory: would be a different
	// database, so pin the pool to one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Professional{}, &models.Appointment{}))
	return db
}

// seed creates professional 10 and patients 5 and 6, matching the ids
// used throughout the lifecycle scenarios.
func seed(t *testing.T, db *gorm.DB) {
	t.Helper()

	profUser := models.User{ID: 1, Username: "dr.silva", Password: "x", Role: models.RoleProfessional}
	require.NoError(t, db.Create(&profUser).Error)
	require.NoError(t, db.Create(&models.Professional{ID: 10, UserID: 1, Name: "Dr. Silva", Specialty: "Cardiologia"}).Error)

	for _, u := range []models.User{
		{ID: 5, Username: "maria", Password: "x", Role: models.RolePatient},
		{ID: 6, Username: "joao", Password: "x", Role: models.RolePatient},
	} {
		user := u
		require.NoError(t, db.Create(&user).Error)
	}
}

func slotTime() time.Time {
	return time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
}

func TestCreateSlot(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, false, false)

	appointment, err := svc.CreateSlot(10, slotTime())
	require.NoError(t, err)

	assert.Equal(t, models.StatusAvailable, appointment.Status)
	assert.Nil(t, appointment.UserID)
	assert.Equal(t, uint(10), appointment.ProfessionalID)
}

func TestCreateSlotRequiresTime(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, false, false)

	_, err := svc.CreateSlot(10, time.Time{})
	assert.ErrorIs(t, err, ErrMissingTime)
}

func TestCreateSlotUnknownProfessional(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, false, false)

	_, err := svc.CreateSlot(99, slotTime())
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
}

func TestDuplicateSlotTimes(t *testing.T) {
	t.Run("allowed by default", func(t *testing.T) {
		db := newTestDB(t)
		seed(t, db)
		svc := NewService(db, false, false)

		_, err := svc.CreateSlot(10, slotTime())
		require.NoError(t, err)
		_, err = svc.CreateSlot(10, slotTime())
		assert.NoError(t, err)
	})

	t.Run("rejected when uniqueness is on", func(t *testing.T) {
		db := newTestDB(t)
		seed(t, db)
		svc := NewService(db, false, true)

		_, err := svc.CreateSlot(10, slotTime())
		require.NoError(t, err)
		_, err = svc.CreateSlot(10, slotTime())
		assert.ErrorIs(t, err, ErrSlotTimeTaken)
	})
}

// The full lifecycle from the booking scenario: professional 10 opens a
// slot, patient 5 claims it, an admin releases it, then deletes it.
func TestSlotLifecycleScenario(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, false, false)

	created, err := svc.CreateSlot(10, slotTime())
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, created.Status)
	assert.Nil(t, created.UserID)

	claimed, err := svc.ClaimSlot(created.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnavailable, claimed.Status)
	require.NotNil(t, claimed.UserID)
	assert.Equal(t, uint(5), *claimed.UserID)

	var stored models.Appointment
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Equal(t, models.StatusUnavailable, stored.Status)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, uint(5), *stored.UserID)

	released, err := svc.ReleaseSlot(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, released.Status)
	assert.Nil(t, released.UserID)

	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Equal(t, models.StatusAvailable, stored.Status)
	assert.Nil(t, stored.UserID)

	require.NoError(t, svc.DeleteSlot(created.ID))

	listings, err := svc.ByProfessional(10)
	require.NoError(t, err)
	assert.Empty(t, listings)

	available, err := svc.AvailableByProfessional(10)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestReleaseIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, false, false)

	created, err := svc.CreateSlot(10, slotTime())
	require.NoError(t, err)
	_, err = svc.ClaimSlot(created.ID, 5)
	require.NoError(t, err)

	first, err := svc.ReleaseSlot(created.ID)
	require.NoError(t, err)
	second, err := svc.ReleaseSlot(created.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Nil(t, second.UserID)
}

func TestClaimMissingSlot(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, false, false)

	_, err := svc.ClaimSlot(999, 5)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	_, err = svc.ReleaseSlot(999)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	assert.ErrorIs(t, svc.DeleteSlot(999), ErrSlotNotFound)
}

// With the lenient (observed) behavior, the second claim displaces the
// first occupant: last writer wins, deterministically.
func TestConcurrentClaimsLastWriterWins(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, false, false)

	created, err := svc.CreateSlot(10, slotTime())
	require.NoError(t, err)

	_, err = svc.ClaimSlot(created.ID, 5)
	require.NoError(t, err)
	_, err = svc.ClaimSlot(created.ID, 6)
	require.NoError(t, err)

	var stored models.Appointment
	require.NoError(t, db.First(&stored, created.ID).Error)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, uint(6), *stored.UserID)
	assert.Equal(t, models.StatusUnavailable, stored.Status)
}

// With strict claims the update is conditional on availability, so the
// second claim fails and the first occupant keeps the slot.
func TestConcurrentClaimsStrictConflict(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, true, false)

	created, err := svc.CreateSlot(10, slotTime())
	require.NoError(t, err)

	_, err = svc.ClaimSlot(created.ID, 5)
	require.NoError(t, err)
	_, err = svc.ClaimSlot(created.ID, 6)
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)

	var stored models.Appointment
	require.NoError(t, db.First(&stored, created.ID).Error)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, uint(5), *stored.UserID)
}

func TestDeleteBookedSlot(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, false, false)

	created, err := svc.CreateSlot(10, slotTime())
	require.NoError(t, err)
	_, err = svc.ClaimSlot(created.ID, 5)
	require.NoError(t, err)

	// Deletion is not state-gated.
	require.NoError(t, svc.DeleteSlot(created.ID))

	byPatient, err := svc.ByPatient(5)
	require.NoError(t, err)
	assert.Empty(t, byPatient)
}

func TestListings(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	svc := NewService(db, false, false)

	open, err := svc.CreateSlot(10, slotTime())
	require.NoError(t, err)
	booked, err := svc.CreateSlot(10, slotTime().Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.ClaimSlot(booked.ID, 5)
	require.NoError(t, err)

	available, err := svc.AvailableByProfessional(10)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)

	all, err := svc.ByProfessional(10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ByPatient(5)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, booked.ID, mine[0].ID)
}
