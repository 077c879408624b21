package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clinic-booking-server/internal/models"
)

func notificationFixture() (*models.Appointment, *models.Patient, *models.Doctor) {
	appointment := &models.Appointment{
		AppointmentDate:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:          "09:00",
		DurationMinutes:    30,
		CancellationReason: "Patient recovered",
	}
	patient := &models.Patient{
		UserID: "patient-user",
		User:   models.User{FirstName: "Jane", LastName: "Doe"},
	}
	doctor := &models.Doctor{
		UserID: "doctor-user",
		User:   models.User{FirstName: "Sarah", LastName: "Smith"},
	}
	return appointment, patient, doctor
}

func TestBookingCreatedNotifications(t *testing.T) {
	appointment, patient, doctor := notificationFixture()

	notifications := BookingCreatedNotifications(appointment, patient, doctor)
	require.Len(t, notifications, 2)

	toDoctor := notifications[0]
	assert.Equal(t, "doctor-user", toDoctor.UserID)
	assert.Equal(t, models.NotifyNewAppointment, toDoctor.Type)
	assert.Equal(t, "New Appointment", toDoctor.Title)
	assert.Contains(t, toDoctor.Message, "Jane Doe")
	assert.Contains(t, toDoctor.Message, "2025-03-10")
	assert.Contains(t, toDoctor.Message, "09:00")

	toPatient := notifications[1]
	assert.Equal(t, "patient-user", toPatient.UserID)
	assert.Equal(t, models.NotifyAppointmentConfirmation, toPatient.Type)
	assert.Equal(t, "Appointment Scheduled", toPatient.Title)
	assert.Contains(t, toPatient.Message, "Dr. Sarah Smith")
}

func TestBookingCancelledNotifications(t *testing.T) {
	appointment, patient, doctor := notificationFixture()

	notifications := BookingCancelledNotifications(appointment, patient, doctor)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		assert.Equal(t, models.NotifyAppointmentCancellation, n.Type)
		assert.Equal(t, "Appointment Cancelled", n.Title)
		assert.Contains(t, n.Message, "Patient recovered")
	}
	assert.Equal(t, "patient-user", notifications[0].UserID)
	assert.Equal(t, "doctor-user", notifications[1].UserID)
}

func TestDoctorApprovedNotifications(t *testing.T) {
	_, _, doctor := notificationFixture()

	notifications := DoctorApprovedNotifications(doctor)
	require.Len(t, notifications, 1)
	assert.Equal(t, "doctor-user", notifications[0].UserID)
	assert.Equal(t, models.NotifySystem, notifications[0].Type)
	assert.Equal(t, "Application Approved", notifications[0].Title)
}

func TestDispatch_SwallowsSinkFailures(t *testing.T) {
	store := newMemStore()
	store.failNotifications = true
	svc := NewNotificationService(store, zap.NewNop())

	// Must not panic or surface an error
	svc.Dispatch(context.Background(), []models.Notification{
		{UserID: "u1", Type: models.NotifySystem, Title: "t", Message: "m"},
	})
	assert.Empty(t, store.notifications)
}

func TestDispatch_PartialFailureDeliversTheRest(t *testing.T) {
	store := newMemStore()
	svc := NewNotificationService(store, zap.NewNop())

	svc.Dispatch(context.Background(), []models.Notification{
		{UserID: "u1", Type: models.NotifySystem, Title: "a", Message: "m"},
		{UserID: "u2", Type: models.NotifySystem, Title: "b", Message: "m"},
	})
	assert.Len(t, store.notifications, 2)
}

func TestReadSide(t *testing.T) {
	store := newMemStore()
	svc := NewNotificationService(store, zap.NewNop())
	ctx := context.Background()

	svc.Dispatch(ctx, []models.Notification{
		{UserID: "u1", Type: models.NotifySystem, Title: "a", Message: "m"},
		{UserID: "u1", Type: models.NotifySystem, Title: "b", Message: "m"},
		{UserID: "u2", Type: models.NotifySystem, Title: "c", Message: "m"},
	})

	list, err := svc.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	count, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkRead(ctx, list[0].ID, "u1"))
	count, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Marking someone else's notification is a not-found, not a cross-user read
	err = svc.MarkRead(ctx, list[1].ID, "u2")
	assert.Error(t, err)

	require.NoError(t, svc.MarkAllRead(ctx, "u1"))
	count, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// u2 untouched
	count, err = svc.UnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
