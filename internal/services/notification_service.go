package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/repository"
)

// BookingCreatedNotifications maps a successful booking to the messages it
// must produce: one for the doctor, one for the patient. Pure function, no
// side effects.
func BookingCreatedNotifications(appointment *models.Appointment, patient *models.Patient, doctor *models.Doctor) []models.Notification {
	date := appointment.AppointmentDate.Format("2006-01-02")
	return []models.Notification{
		{
			UserID: doctor.UserID,
			Type:   models.NotifyNewAppointment,
			Title:  "New Appointment",
			Message: fmt.Sprintf("New appointment scheduled with patient %s on %s at %s",
				patient.User.FullName(), date, appointment.StartTime),
		},
		{
			UserID: patient.UserID,
			Type:   models.NotifyAppointmentConfirmation,
			Title:  "Appointment Scheduled",
			Message: fmt.Sprintf("Your appointment with Dr. %s has been scheduled for %s at %s",
				doctor.User.FullName(), date, appointment.StartTime),
		},
	}
}

// BookingCancelledNotifications maps a cancellation to messages for both
// participants.
func BookingCancelledNotifications(appointment *models.Appointment, patient *models.Patient, doctor *models.Doctor) []models.Notification {
	message := fmt.Sprintf("Your appointment on %s at %s has been cancelled. Reason: %s",
		appointment.AppointmentDate.Format("2006-01-02"), appointment.StartTime, appointment.CancellationReason)
	return []models.Notification{
		{
			UserID:  patient.UserID,
			Type:    models.NotifyAppointmentCancellation,
			Title:   "Appointment Cancelled",
			Message: message,
		},
		{
			UserID:  doctor.UserID,
			Type:    models.NotifyAppointmentCancellation,
			Title:   "Appointment Cancelled",
			Message: message,
		},
	}
}

// DoctorApprovedNotifications maps an approval to the message sent to the
// newly approved doctor.
func DoctorApprovedNotifications(doctor *models.Doctor) []models.Notification {
	return []models.Notification{
		{
			UserID: doctor.UserID,
			Type:   models.NotifySystem,
			Title:  "Application Approved",
			Message: "Congratulations! Your doctor application has been approved. " +
				"You can now log in and start managing appointments.",
		},
	}
}

// NotificationService persists notifications and serves the read side of the
// notification sink.
type NotificationService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(store repository.Store, logger *zap.Logger) *NotificationService {
	return &NotificationService{store: store, logger: logger}
}

// Dispatch persists notifications best-effort. Delivery failures are logged
// and swallowed; they must never fail the transition that produced them.
func (s *NotificationService) Dispatch(ctx context.Context, notifications []models.Notification) {
	for i := range notifications {
		if err := s.store.Notifications().Create(ctx, &notifications[i]); err != nil {
			s.logger.Warn("failed to deliver notification",
				zap.String("userId", notifications[i].UserID),
				zap.String("type", string(notifications[i].Type)),
				zap.Error(err))
		}
	}
}

// ListForUser returns all notifications addressed to the user.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.store.Notifications().ListByUser(ctx, userID)
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, userID)
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.store.Notifications().MarkRead(ctx, id, userID)
}

// MarkAllRead flags all of the user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.Notifications().MarkAllRead(ctx, userID)
}
