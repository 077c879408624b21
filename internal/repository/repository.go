// Package repository defines the store capabilities the service layer
// consumes, plus their GORM implementations. Services depend only on the
// interfaces so tests can substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"clinic-booking-server/internal/models"
)

// UserStore provides access to user accounts.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// DoctorStore provides access to doctor profiles.
type DoctorStore interface {
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	// GetByIDForUpdate locks the doctor row for the duration of the enclosing
	// transaction, serializing concurrent bookings per doctor.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Doctor, error)
	GetByUserID(ctx context.Context, userID string) (*models.Doctor, error)
	FindByLicenseNumber(ctx context.Context, licenseNumber string) (*models.Doctor, error)
	ListBookable(ctx context.Context) ([]models.Doctor, error)
	ListByApprovalStatus(ctx context.Context, status models.ApprovalStatus) ([]models.Doctor, error)
	Create(ctx context.Context, doctor *models.Doctor) error
	Update(ctx context.Context, doctor *models.Doctor) error
	// UpdateApprovalFromPending persists the doctor's approval fields only if
	// the stored status is still PENDING (compare-and-set). It returns an
	// InvalidState error when another transition won the race.
	UpdateApprovalFromPending(ctx context.Context, doctor *models.Doctor) error
}

// PatientStore provides access to patient profiles.
type PatientStore interface {
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	GetByUserID(ctx context.Context, userID string) (*models.Patient, error)
	Create(ctx context.Context, patient *models.Patient) error
}

// AppointmentStore provides access to appointments.
type AppointmentStore interface {
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appointment *models.Appointment) error
	Update(ctx context.Context, appointment *models.Appointment) error
	// FindActiveByDoctorAndDate returns the doctor's SCHEDULED and CONFIRMED
	// appointments on the given date, ordered by start time.
	FindActiveByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]models.Appointment, error)
}

// NotificationStore provides access to the notification sink.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// Store bundles the per-entity stores and the transaction boundary.
type Store interface {
	Users() UserStore
	Doctors() DoctorStore
	Patients() PatientStore
	Appointments() AppointmentStore
	Notifications() NotificationStore
	// Transact runs fn against a store bound to a single database
	// transaction; fn returning an error rolls everything back.
	Transact(ctx context.Context, fn func(Store) error) error
}
