package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

func seedAdmin(store *memStore) *models.User {
	return store.addUser(&models.User{
		Email:    "admin@clinic.test",
		Role:     models.RoleAdmin,
		IsActive: true,
	})
}

func applyInput() ApplyAsDoctorInput {
	return ApplyAsDoctorInput{
		Email:           "r.patel@clinic.test",
		Password:        "secret-pass",
		FirstName:       "Ravi",
		LastName:        "Patel",
		Specialization:  "Cardiology",
		LicenseNumber:   "ZA-CAR-010-2024",
		YearsExperience: 8,
		Qualification:   "MBChB",
	}
}

func TestApply_CreatesPendingDoctorWithInactiveAccount(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)

	doctor, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, doctor.ApprovalStatus)
	assert.True(t, doctor.AvailabilityStatus)

	user := store.users[doctor.UserID]
	require.NotNil(t, user)
	assert.Equal(t, models.RoleDoctor, user.Role)
	assert.False(t, user.IsActive)
	assert.False(t, user.IsVerified)
	assert.True(t, user.CheckPassword("secret-pass"))
}

func TestApply_InvalidLicenseFormat(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)

	for _, license := range []string{"", "za-car-010-2024", "ZA-CARD-010-2024", "ZA-CAR-10-2024", "ZACAR0102024"} {
		input := applyInput()
		input.LicenseNumber = license
		_, err := svc.Apply(context.Background(), input)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "license %q should be rejected", license)
	}
	assert.Empty(t, store.doctors)
}

func TestApply_DuplicateLicense(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)

	_, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)

	input := applyInput()
	input.Email = "other@clinic.test"
	_, err = svc.Apply(context.Background(), input)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestApply_DuplicateEmail(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)
	store.addUser(&models.User{Email: "r.patel@clinic.test", Role: models.RolePatient})

	_, err := svc.Apply(context.Background(), applyInput())
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestApprove_ActivatesAccountAndUnblocksBooking(t *testing.T) {
	store := newMemStore()
	appointments, svc := newTestServices(store)
	admin := seedAdmin(store)
	patient := seedPatient(store)

	doctor, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)

	// Booking with a pending doctor fails even though the slot is free.
	_, err = appointments.Book(context.Background(), bookInput(patient.ID, doctor.ID, "09:00", 30))
	require.True(t, apperrors.IsKind(err, apperrors.KindDoctorNotApproved))

	require.NoError(t, svc.Approve(context.Background(), doctor.ID, admin.ID))

	stored := store.doctors[doctor.ID]
	assert.Equal(t, models.ApprovalApproved, stored.ApprovalStatus)
	require.NotNil(t, stored.ApprovedByID)
	assert.Equal(t, admin.ID, *stored.ApprovedByID)
	assert.Equal(t, testNow, *stored.ApprovedAt)

	user := store.users[doctor.UserID]
	assert.True(t, user.IsActive)
	assert.True(t, user.IsVerified)

	// The doctor is told about the decision.
	require.Len(t, store.notifications, 1)
	assert.Equal(t, doctor.UserID, store.notifications[0].UserID)
	assert.Equal(t, models.NotifySystem, store.notifications[0].Type)

	// And the same booking now goes through.
	_, err = appointments.Book(context.Background(), bookInput(patient.ID, doctor.ID, "09:00", 30))
	assert.NoError(t, err)
}

func TestApprove_RequiresAdmin(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)
	nonAdmin := store.addUser(&models.User{Email: "p@x.test", Role: models.RolePatient, IsActive: true})

	doctor, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)

	err = svc.Approve(context.Background(), doctor.ID, nonAdmin.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	assert.Equal(t, models.ApprovalPending, store.doctors[doctor.ID].ApprovalStatus)
	assert.False(t, store.users[doctor.UserID].IsActive)
	assert.Empty(t, store.notifications)
}

func TestApprove_OnlyFromPending(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)
	admin := seedAdmin(store)

	doctor, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)
	require.NoError(t, svc.Approve(context.Background(), doctor.ID, admin.ID))

	// Approving twice, or approving after a rejection, is not a transition.
	err = svc.Approve(context.Background(), doctor.ID, admin.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))

	store.doctors[doctor.ID].ApprovalStatus = models.ApprovalRejected
	err = svc.Approve(context.Background(), doctor.ID, admin.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	assert.Equal(t, models.ApprovalRejected, store.doctors[doctor.ID].ApprovalStatus)
}

func TestReject_KeepsAccountInactive(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)
	admin := seedAdmin(store)

	doctor, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)

	require.NoError(t, svc.Reject(context.Background(), doctor.ID, admin.ID))

	stored := store.doctors[doctor.ID]
	assert.Equal(t, models.ApprovalRejected, stored.ApprovalStatus)
	require.NotNil(t, stored.ApprovedByID)
	assert.Equal(t, admin.ID, *stored.ApprovedByID)
	assert.False(t, store.users[doctor.UserID].IsActive)
	assert.Empty(t, store.notifications)

	// Rejection is final.
	err = svc.Reject(context.Background(), doctor.ID, admin.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestReject_RequiresAdmin(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)
	nonAdmin := store.addUser(&models.User{Email: "d@x.test", Role: models.RoleDoctor, IsActive: true})

	doctor, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)

	err = svc.Reject(context.Background(), doctor.ID, nonAdmin.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	assert.Equal(t, models.ApprovalPending, store.doctors[doctor.ID].ApprovalStatus)
}

func TestApprove_MissingDoctorOrApprover(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)
	admin := seedAdmin(store)

	err := svc.Approve(context.Background(), "missing", admin.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	doctor, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)
	err = svc.Approve(context.Background(), doctor.ID, "missing")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateAvailability_TogglesBookability(t *testing.T) {
	store := newMemStore()
	appointments, svc := newTestServices(store)
	doctor := seedBookableDoctor(store)
	patient := seedPatient(store)

	require.NoError(t, svc.UpdateAvailability(context.Background(), doctor.ID, false))
	assert.False(t, store.doctors[doctor.ID].AvailabilityStatus)

	_, err := appointments.Book(context.Background(), bookInput(patient.ID, doctor.ID, "09:00", 30))
	assert.True(t, apperrors.IsKind(err, apperrors.KindDoctorUnavailable))

	require.NoError(t, svc.UpdateAvailability(context.Background(), doctor.ID, true))
	_, err = appointments.Book(context.Background(), bookInput(patient.ID, doctor.ID, "09:00", 30))
	assert.NoError(t, err)
}

func TestListBookableAndPending(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)
	admin := seedAdmin(store)
	bookable := seedBookableDoctor(store)

	pending, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)

	list, err := svc.ListBookable(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bookable.ID, list[0].ID)

	waiting, err := svc.ListPendingApproval(context.Background())
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, pending.ID, waiting[0].ID)

	// An approved but unavailable doctor is not bookable.
	require.NoError(t, svc.Approve(context.Background(), pending.ID, admin.ID))
	require.NoError(t, svc.UpdateAvailability(context.Background(), pending.ID, false))
	list, err = svc.ListBookable(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestApprovalTimestampsUseServiceClock(t *testing.T) {
	store := newMemStore()
	_, svc := newTestServices(store)
	admin := seedAdmin(store)
	fixed := time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	doctor, err := svc.Apply(context.Background(), applyInput())
	require.NoError(t, err)
	require.NoError(t, svc.Approve(context.Background(), doctor.ID, admin.ID))
	assert.Equal(t, fixed, *store.doctors[doctor.ID].ApprovedAt)
}
