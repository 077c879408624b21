package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

// GormStore implements Store on top of a *gorm.DB connection or transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserStore                 { return &gormUsers{db: s.db} }
func (s *GormStore) Doctors() DoctorStore             { return &gormDoctors{db: s.db} }
func (s *GormStore) Patients() PatientStore           { return &gormPatients{db: s.db} }
func (s *GormStore) Appointments() AppointmentStore   { return &gormAppointments{db: s.db} }
func (s *GormStore) Notifications() NotificationStore { return &gormNotifications{db: s.db} }

// Transact runs fn inside a database transaction.
func (s *GormStore) Transact(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// --- Users ---

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", email)
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *gormUsers) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUsers) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// --- Doctors ---

type gormDoctors struct {
	db *gorm.DB
}

func (r *gormDoctors) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.db.WithContext(ctx).Preload("User").First(&doctor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("doctor", id)
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *gormDoctors) GetByIDForUpdate(ctx context.Context, id string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&doctor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("doctor", id)
		}
		return nil, err
	}
	// Preload after locking; FOR UPDATE does not compose with joins here.
	if err := r.db.WithContext(ctx).First(&doctor.User, "id = ?", doctor.UserID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &doctor, nil
}

func (r *gormDoctors) GetByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.db.WithContext(ctx).Preload("User").First(&doctor, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("doctor", userID)
		}
		return nil, err
	}
	return &doctor, nil
}

// FindByLicenseNumber returns (nil, nil) when no doctor holds the license.
func (r *gormDoctors) FindByLicenseNumber(ctx context.Context, licenseNumber string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).First(&doctor, "license_number = ?", licenseNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *gormDoctors) ListBookable(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := r.db.WithContext(ctx).Preload("User").
		Where("approval_status = ? AND availability_status = ?", models.ApprovalApproved, true).
		Order("created_at desc").
		Find(&doctors).Error
	return doctors, err
}

func (r *gormDoctors) ListByApprovalStatus(ctx context.Context, status models.ApprovalStatus) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := r.db.WithContext(ctx).Preload("User").
		Where("approval_status = ?", status).
		Order("created_at desc").
		Find(&doctors).Error
	return doctors, err
}

func (r *gormDoctors) Create(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Create(doctor).Error
}

func (r *gormDoctors) Update(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Save(doctor).Error
}

func (r *gormDoctors) UpdateApprovalFromPending(ctx context.Context, doctor *models.Doctor) error {
	result := r.db.WithContext(ctx).Model(&models.Doctor{}).
		Where("id = ? AND approval_status = ?", doctor.ID, models.ApprovalPending).
		Updates(map[string]interface{}{
			"approval_status": doctor.ApprovalStatus,
			"approved_by_id":  doctor.ApprovedByID,
			"approved_at":     doctor.ApprovedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.InvalidState("doctor %s is no longer pending approval", doctor.ID)
	}
	return nil
}

// --- Patients ---

type gormPatients struct {
	db *gorm.DB
}

func (r *gormPatients) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).Preload("User").First(&patient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("patient", id)
		}
		return nil, err
	}
	return &patient, nil
}

func (r *gormPatients) GetByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).Preload("User").First(&patient, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("patient", userID)
		}
		return nil, err
	}
	return &patient, nil
}

func (r *gormPatients) Create(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}

// --- Appointments ---

type gormAppointments struct {
	db *gorm.DB
}

func (r *gormAppointments) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.WithContext(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("appointment", id)
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *gormAppointments) Create(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *gormAppointments) Update(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}

func (r *gormAppointments) FindActiveByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ? AND status IN ?",
			doctorID, date.Format("2006-01-02"),
			[]models.AppointmentStatus{models.StatusScheduled, models.StatusConfirmed}).
		Order("start_time asc").
		Find(&appointments).Error
	return appointments, err
}

func (r *gormAppointments) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("appointment_date desc, start_time desc").
		Find(&appointments).Error
	return appointments, err
}

func (r *gormAppointments) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("appointment_date desc, start_time desc").
		Find(&appointments).Error
	return appointments, err
}

func (r *gormAppointments) ListUpcoming(ctx context.Context, from time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("appointment_date >= ? AND status = ?", from.Format("2006-01-02"), models.StatusScheduled).
		Order("appointment_date asc, start_time asc").
		Find(&appointments).Error
	return appointments, err
}

// --- Notifications ---

type gormNotifications struct {
	db *gorm.DB
}

func (r *gormNotifications) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *gormNotifications) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error
	return notifications, err
}

func (r *gormNotifications) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *gormNotifications) MarkRead(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("notification", id)
	}
	return nil
}

func (r *gormNotifications) MarkAllRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
