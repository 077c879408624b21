package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/repository"
)

// memStore is an in-memory repository.Store used by the service tests.
// Transact runs the callback against the same store; the services under test
// treat it as a committed transaction.
type memStore struct {
	users         map[string]*models.User
	doctors       map[string]*models.Doctor
	patients      map[string]*models.Patient
	appointments  map[string]*models.Appointment
	notifications []models.Notification

	failNotifications bool // simulate a broken notification sink
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]*models.User),
		doctors:      make(map[string]*models.Doctor),
		patients:     make(map[string]*models.Patient),
		appointments: make(map[string]*models.Appointment),
	}
}

func (s *memStore) Users() repository.UserStore                 { return &memUsers{s} }
func (s *memStore) Doctors() repository.DoctorStore             { return &memDoctors{s} }
func (s *memStore) Patients() repository.PatientStore           { return &memPatients{s} }
func (s *memStore) Appointments() repository.AppointmentStore   { return &memAppointments{s} }
func (s *memStore) Notifications() repository.NotificationStore { return &memNotifications{s} }

func (s *memStore) Transact(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

// Seed helpers

func (s *memStore) addUser(user *models.User) *models.User {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	s.users[user.ID] = user
	return user
}

func (s *memStore) addDoctor(doctor *models.Doctor) *models.Doctor {
	if doctor.ID == "" {
		doctor.ID = uuid.New().String()
	}
	s.doctors[doctor.ID] = doctor
	return doctor
}

func (s *memStore) addPatient(patient *models.Patient) *models.Patient {
	if patient.ID == "" {
		patient.ID = uuid.New().String()
	}
	s.patients[patient.ID] = patient
	return patient
}

type memUsers struct{ s *memStore }

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.s.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, apperrors.NotFound("user", id)
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, user := range m.s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.s.addUser(user)
	return nil
}

func (m *memUsers) Update(ctx context.Context, user *models.User) error {
	m.s.users[user.ID] = user
	return nil
}

type memDoctors struct{ s *memStore }

func (m *memDoctors) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	if doctor, ok := m.s.doctors[id]; ok {
		cp := *doctor
		return &cp, nil
	}
	return nil, apperrors.NotFound("doctor", id)
}

func (m *memDoctors) GetByIDForUpdate(ctx context.Context, id string) (*models.Doctor, error) {
	return m.GetByID(ctx, id)
}

func (m *memDoctors) GetByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	for _, doctor := range m.s.doctors {
		if doctor.UserID == userID {
			cp := *doctor
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("doctor", userID)
}

func (m *memDoctors) FindByLicenseNumber(ctx context.Context, licenseNumber string) (*models.Doctor, error) {
	for _, doctor := range m.s.doctors {
		if doctor.LicenseNumber == licenseNumber {
			cp := *doctor
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDoctors) ListBookable(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	for _, doctor := range m.s.doctors {
		if doctor.IsBookable() {
			doctors = append(doctors, *doctor)
		}
	}
	return doctors, nil
}

func (m *memDoctors) ListByApprovalStatus(ctx context.Context, status models.ApprovalStatus) ([]models.Doctor, error) {
	var doctors []models.Doctor
	for _, doctor := range m.s.doctors {
		if doctor.ApprovalStatus == status {
			doctors = append(doctors, *doctor)
		}
	}
	return doctors, nil
}

func (m *memDoctors) Create(ctx context.Context, doctor *models.Doctor) error {
	m.s.addDoctor(doctor)
	return nil
}

func (m *memDoctors) Update(ctx context.Context, doctor *models.Doctor) error {
	m.s.doctors[doctor.ID] = doctor
	return nil
}

func (m *memDoctors) UpdateApprovalFromPending(ctx context.Context, doctor *models.Doctor) error {
	stored, ok := m.s.doctors[doctor.ID]
	if !ok {
		return apperrors.NotFound("doctor", doctor.ID)
	}
	if stored.ApprovalStatus != models.ApprovalPending {
		return apperrors.InvalidState("doctor %s is no longer pending approval", doctor.ID)
	}
	stored.ApprovalStatus = doctor.ApprovalStatus
	stored.ApprovedByID = doctor.ApprovedByID
	stored.ApprovedAt = doctor.ApprovedAt
	return nil
}

type memPatients struct{ s *memStore }

func (m *memPatients) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	if patient, ok := m.s.patients[id]; ok {
		cp := *patient
		return &cp, nil
	}
	return nil, apperrors.NotFound("patient", id)
}

func (m *memPatients) GetByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	for _, patient := range m.s.patients {
		if patient.UserID == userID {
			cp := *patient
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("patient", userID)
}

func (m *memPatients) Create(ctx context.Context, patient *models.Patient) error {
	m.s.addPatient(patient)
	return nil
}

type memAppointments struct{ s *memStore }

func (m *memAppointments) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	if appointment, ok := m.s.appointments[id]; ok {
		cp := *appointment
		return &cp, nil
	}
	return nil, apperrors.NotFound("appointment", id)
}

func (m *memAppointments) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	m.s.appointments[appointment.ID] = appointment
	return nil
}

func (m *memAppointments) Update(ctx context.Context, appointment *models.Appointment) error {
	m.s.appointments[appointment.ID] = appointment
	return nil
}

func (m *memAppointments) FindActiveByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]models.Appointment, error) {
	day := date.Format("2006-01-02")
	var appointments []models.Appointment
	for _, a := range m.s.appointments {
		if a.DoctorID != doctorID || a.AppointmentDate.Format("2006-01-02") != day {
			continue
		}
		if a.Status == models.StatusScheduled || a.Status == models.StatusConfirmed {
			appointments = append(appointments, *a)
		}
	}
	return appointments, nil
}

func (m *memAppointments) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	for _, a := range m.s.appointments {
		if a.PatientID == patientID {
			appointments = append(appointments, *a)
		}
	}
	return appointments, nil
}

func (m *memAppointments) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	for _, a := range m.s.appointments {
		if a.DoctorID == doctorID {
			appointments = append(appointments, *a)
		}
	}
	return appointments, nil
}

func (m *memAppointments) ListUpcoming(ctx context.Context, from time.Time) ([]models.Appointment, error) {
	day := from.Format("2006-01-02")
	var appointments []models.Appointment
	for _, a := range m.s.appointments {
		if a.Status == models.StatusScheduled && a.AppointmentDate.Format("2006-01-02") >= day {
			appointments = append(appointments, *a)
		}
	}
	return appointments, nil
}

type memNotifications struct{ s *memStore }

func (m *memNotifications) Create(ctx context.Context, notification *models.Notification) error {
	if m.s.failNotifications {
		return errors.New("notification sink unavailable")
	}
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	m.s.notifications = append(m.s.notifications, *notification)
	return nil
}

func (m *memNotifications) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	for _, n := range m.s.notifications {
		if n.UserID == userID {
			notifications = append(notifications, n)
		}
	}
	return notifications, nil
}

func (m *memNotifications) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) MarkRead(ctx context.Context, id, userID string) error {
	for i := range m.s.notifications {
		if m.s.notifications[i].ID == id && m.s.notifications[i].UserID == userID {
			m.s.notifications[i].IsRead = true
			return nil
		}
	}
	return apperrors.NotFound("notification", id)
}

func (m *memNotifications) MarkAllRead(ctx context.Context, userID string) error {
	for i := range m.s.notifications {
		if m.s.notifications[i].UserID == userID {
			m.s.notifications[i].IsRead = true
		}
	}
	return nil
}
