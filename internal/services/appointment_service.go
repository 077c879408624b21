package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/repository"
)

// AppointmentService owns booking (conflict detection) and the appointment
// lifecycle state machine. All check-then-act sequences run inside a single
// store transaction with the doctor row locked, so two concurrent bookings
// for the same doctor cannot both pass the overlap check.
type AppointmentService struct {
	store    repository.Store
	notifier *NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAppointmentService creates an AppointmentService.
func NewAppointmentService(store repository.Store, notifier *NotificationService, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// BookAppointmentInput carries a booking request.
type BookAppointmentInput struct {
	PatientID       string
	DoctorID        string
	Date            time.Time
	StartTime       string // "15:04"
	DurationMinutes int    // 0 means the default
	Reason          string
}

// UpdateAppointmentInput carries a partial update; nil fields are untouched.
type UpdateAppointmentInput struct {
	Date            *time.Time
	StartTime       *string
	DurationMinutes *int
	Reason          *string
	Notes           *string
}

// Book validates the request, verifies the doctor is bookable, scans the
// doctor's schedule for that date for overlaps and creates the appointment
// with status SCHEDULED.
func (s *AppointmentService) Book(ctx context.Context, input BookAppointmentInput) (*models.Appointment, error) {
	if input.Date.IsZero() || input.StartTime == "" {
		return nil, apperrors.Validation("appointment date and time are required")
	}
	startMinute, ok := models.ParseClock(input.StartTime)
	if !ok {
		return nil, apperrors.Validation("invalid appointment time %q, expected HH:MM", input.StartTime)
	}
	duration := input.DurationMinutes
	if duration == 0 {
		duration = models.DefaultDurationMinutes
	}
	if duration < models.MinDurationMinutes || duration > models.MaxDurationMinutes {
		return nil, apperrors.Validation("duration must be between %d and %d minutes",
			models.MinDurationMinutes, models.MaxDurationMinutes)
	}
	date := startOfDay(input.Date)
	if date.Before(startOfDay(s.now())) {
		return nil, apperrors.Validation("appointment date cannot be in the past")
	}

	var (
		appointment *models.Appointment
		patient     *models.Patient
		doctor      *models.Doctor
	)
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		var err error
		patient, err = tx.Patients().GetByID(ctx, input.PatientID)
		if err != nil {
			return err
		}
		// Locking the doctor row serializes concurrent bookings per doctor.
		doctor, err = tx.Doctors().GetByIDForUpdate(ctx, input.DoctorID)
		if err != nil {
			return err
		}
		if !doctor.IsApproved() {
			return apperrors.DoctorNotApproved(doctor.ID)
		}
		if !doctor.AvailabilityStatus {
			return apperrors.DoctorUnavailable(doctor.ID)
		}
		if err := s.checkConflicts(ctx, tx, doctor.ID, date, startMinute, duration, ""); err != nil {
			return err
		}

		appointment = &models.Appointment{
			PatientID:       patient.ID,
			DoctorID:        doctor.ID,
			AppointmentDate: date,
			StartTime:       input.StartTime,
			DurationMinutes: duration,
			Status:          models.StatusScheduled,
			Reason:          input.Reason,
		}
		return tx.Appointments().Create(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment booked",
		zap.String("appointmentId", appointment.ID),
		zap.String("doctorId", doctor.ID),
		zap.String("patientId", patient.ID))
	s.notifier.Dispatch(ctx, BookingCreatedNotifications(appointment, patient, doctor))
	return appointment, nil
}

// Update mutates date/time/duration/reason/notes of a SCHEDULED appointment,
// re-running the conflict check against the doctor's other appointments on
// the (possibly new) date.
func (s *AppointmentService) Update(ctx context.Context, appointmentID string, input UpdateAppointmentInput) (*models.Appointment, error) {
	var appointment *models.Appointment
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		var err error
		appointment, err = tx.Appointments().GetByID(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appointment.Status != models.StatusScheduled {
			return apperrors.InvalidState("can only update scheduled appointments (current status: %s)", appointment.Status)
		}

		if input.Date != nil {
			appointment.AppointmentDate = startOfDay(*input.Date)
		}
		if input.StartTime != nil {
			appointment.StartTime = *input.StartTime
		}
		if input.DurationMinutes != nil {
			appointment.DurationMinutes = *input.DurationMinutes
		}
		if input.Reason != nil {
			appointment.Reason = *input.Reason
		}
		if input.Notes != nil {
			appointment.Notes = *input.Notes
		}

		startMinute, ok := models.ParseClock(appointment.StartTime)
		if !ok {
			return apperrors.Validation("invalid appointment time %q, expected HH:MM", appointment.StartTime)
		}
		if appointment.DurationMinutes < models.MinDurationMinutes || appointment.DurationMinutes > models.MaxDurationMinutes {
			return apperrors.Validation("duration must be between %d and %d minutes",
				models.MinDurationMinutes, models.MaxDurationMinutes)
		}
		if appointment.AppointmentDate.Before(startOfDay(s.now())) {
			return apperrors.Validation("appointment date cannot be in the past")
		}

		if _, err := tx.Doctors().GetByIDForUpdate(ctx, appointment.DoctorID); err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, tx, appointment.DoctorID, appointment.AppointmentDate,
			startMinute, appointment.DurationMinutes, appointment.ID); err != nil {
			return err
		}
		return tx.Appointments().Update(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

// Cancel moves a SCHEDULED appointment to CANCELLED, recording who cancelled
// it and why, and notifies both participants.
func (s *AppointmentService) Cancel(ctx context.Context, appointmentID, byUserID, reason string) error {
	var (
		appointment *models.Appointment
		patient     *models.Patient
		doctor      *models.Doctor
	)
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		var err error
		appointment, err = tx.Appointments().GetByID(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appointment.Status != models.StatusScheduled {
			return apperrors.InvalidState("can only cancel scheduled appointments (current status: %s)", appointment.Status)
		}
		appointment.Cancel(byUserID, reason, s.now())
		if err := tx.Appointments().Update(ctx, appointment); err != nil {
			return err
		}
		if patient, err = tx.Patients().GetByID(ctx, appointment.PatientID); err != nil {
			return err
		}
		doctor, err = tx.Doctors().GetByID(ctx, appointment.DoctorID)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("appointment cancelled",
		zap.String("appointmentId", appointment.ID),
		zap.String("cancelledBy", byUserID))
	s.notifier.Dispatch(ctx, BookingCancelledNotifications(appointment, patient, doctor))
	return nil
}

// Complete moves a SCHEDULED or CONFIRMED appointment to COMPLETED.
func (s *AppointmentService) Complete(ctx context.Context, appointmentID string) error {
	return s.store.Transact(ctx, func(tx repository.Store) error {
		appointment, err := tx.Appointments().GetByID(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appointment.Status != models.StatusScheduled && appointment.Status != models.StatusConfirmed {
			return apperrors.InvalidState("can only complete scheduled or confirmed appointments (current status: %s)", appointment.Status)
		}
		appointment.Status = models.StatusCompleted
		return tx.Appointments().Update(ctx, appointment)
	})
}

// MarkNoShow moves a SCHEDULED appointment to NO_SHOW.
func (s *AppointmentService) MarkNoShow(ctx context.Context, appointmentID string) error {
	return s.store.Transact(ctx, func(tx repository.Store) error {
		appointment, err := tx.Appointments().GetByID(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appointment.Status != models.StatusScheduled {
			return apperrors.InvalidState("can only mark scheduled appointments as no-show (current status: %s)", appointment.Status)
		}
		appointment.Status = models.StatusNoShow
		return tx.Appointments().Update(ctx, appointment)
	})
}

// PatientByUserID resolves the patient profile linked to a user account.
func (s *AppointmentService) PatientByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	return s.store.Patients().GetByUserID(ctx, userID)
}

// GetByID returns a single appointment.
func (s *AppointmentService) GetByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return s.store.Appointments().GetByID(ctx, appointmentID)
}

// ListForPatient returns the patient's appointments, newest first.
func (s *AppointmentService) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return s.store.Appointments().ListByPatient(ctx, patientID)
}

// ListForDoctor returns the doctor's appointments, newest first.
func (s *AppointmentService) ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return s.store.Appointments().ListByDoctor(ctx, doctorID)
}

// DoctorSchedule returns the doctor's active appointments on a date.
func (s *AppointmentService) DoctorSchedule(ctx context.Context, doctorID string, date time.Time) ([]models.Appointment, error) {
	return s.store.Appointments().FindActiveByDoctorAndDate(ctx, doctorID, startOfDay(date))
}

// ListUpcoming returns scheduled appointments from today onwards.
func (s *AppointmentService) ListUpcoming(ctx context.Context) ([]models.Appointment, error) {
	return s.store.Appointments().ListUpcoming(ctx, startOfDay(s.now()))
}

// checkConflicts scans the doctor's SCHEDULED and CONFIRMED appointments on
// the date for half-open interval overlap with [startMinute,
// startMinute+duration). excludeID skips the appointment being updated.
func (s *AppointmentService) checkConflicts(ctx context.Context, tx repository.Store, doctorID string, date time.Time, startMinute, duration int, excludeID string) error {
	existing, err := tx.Appointments().FindActiveByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return err
	}
	for i := range existing {
		if existing[i].ID == excludeID {
			continue
		}
		if existing[i].Overlaps(startMinute, duration) {
			return apperrors.SlotUnavailable(doctorID, existing[i].ID)
		}
	}
	return nil
}

// startOfDay truncates t to midnight in its location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
