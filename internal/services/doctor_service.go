package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/repository"
)

// DoctorService owns the doctor approval workflow and doctor profile
// operations. Approval is a one-way transition: once a doctor leaves
// PENDING the decision is final.
type DoctorService struct {
	store    repository.Store
	notifier *NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

// NewDoctorService creates a DoctorService.
func NewDoctorService(store repository.Store, notifier *NotificationService, logger *zap.Logger) *DoctorService {
	return &DoctorService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ApplyAsDoctorInput carries a doctor application.
type ApplyAsDoctorInput struct {
	Email           string
	Password        string
	FirstName       string
	LastName        string
	Phone           string
	Specialization  string
	LicenseNumber   string
	YearsExperience int
	Qualification   string
	Bio             string
}

// Apply registers a doctor application: an inactive DOCTOR user account plus
// a PENDING doctor profile. The account stays inactive until an admin
// approves the application.
func (s *DoctorService) Apply(ctx context.Context, input ApplyAsDoctorInput) (*models.Doctor, error) {
	if strings.TrimSpace(input.Specialization) == "" {
		return nil, apperrors.Validation("specialization is required")
	}
	if strings.TrimSpace(input.LicenseNumber) == "" {
		return nil, apperrors.Validation("license number is required")
	}
	if !models.ValidLicenseNumber(input.LicenseNumber) {
		return nil, apperrors.Validation("invalid license number format, expected XX-XXX-XXX-XXXX")
	}

	var doctor *models.Doctor
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		exists, err := tx.Users().ExistsByEmail(ctx, input.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Validation("email already registered: %s", input.Email)
		}
		existing, err := tx.Doctors().FindByLicenseNumber(ctx, input.LicenseNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.Validation("license number already exists: %s", input.LicenseNumber)
		}

		user := &models.User{
			Email:     input.Email,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Phone:     input.Phone,
			Role:      models.RoleDoctor,
			// Inactive until approved
			IsActive:   false,
			IsVerified: false,
		}
		if err := user.SetPassword(input.Password); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}

		doctor = &models.Doctor{
			UserID:             user.ID,
			Specialization:     input.Specialization,
			LicenseNumber:      input.LicenseNumber,
			YearsExperience:    input.YearsExperience,
			Qualification:      input.Qualification,
			Bio:                input.Bio,
			AvailabilityStatus: true,
			ApprovalStatus:     models.ApprovalPending,
		}
		if err := tx.Doctors().Create(ctx, doctor); err != nil {
			return err
		}
		doctor.User = *user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("doctor application submitted",
		zap.String("doctorId", doctor.ID),
		zap.String("licenseNumber", doctor.LicenseNumber))
	return doctor, nil
}

// Approve transitions a PENDING doctor to APPROVED, activates the linked
// user account and notifies the doctor. Only admins may approve.
func (s *DoctorService) Approve(ctx context.Context, doctorID, approverID string) error {
	var doctor *models.Doctor
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		approver, err := tx.Users().GetByID(ctx, approverID)
		if err != nil {
			return err
		}
		if approver.Role != models.RoleAdmin {
			return apperrors.Unauthorized("only admins can approve doctor applications")
		}
		doctor, err = tx.Doctors().GetByID(ctx, doctorID)
		if err != nil {
			return err
		}
		if doctor.ApprovalStatus != models.ApprovalPending {
			return apperrors.InvalidState("doctor %s is not pending approval (current status: %s)", doctor.ID, doctor.ApprovalStatus)
		}

		doctor.Approve(approver.ID, s.now())
		// Compare-and-set: fails if the status changed under us.
		if err := tx.Doctors().UpdateApprovalFromPending(ctx, doctor); err != nil {
			return err
		}

		user, err := tx.Users().GetByID(ctx, doctor.UserID)
		if err != nil {
			return err
		}
		user.IsActive = true
		user.IsVerified = true
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return err
	}

	s.logger.Info("doctor approved",
		zap.String("doctorId", doctorID),
		zap.String("approverId", approverID))
	s.notifier.Dispatch(ctx, DoctorApprovedNotifications(doctor))
	return nil
}

// Reject transitions a PENDING doctor to REJECTED. The linked user account
// stays inactive. Only admins may reject.
func (s *DoctorService) Reject(ctx context.Context, doctorID, rejecterID string) error {
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		rejecter, err := tx.Users().GetByID(ctx, rejecterID)
		if err != nil {
			return err
		}
		if rejecter.Role != models.RoleAdmin {
			return apperrors.Unauthorized("only admins can reject doctor applications")
		}
		doctor, err := tx.Doctors().GetByID(ctx, doctorID)
		if err != nil {
			return err
		}
		if doctor.ApprovalStatus != models.ApprovalPending {
			return apperrors.InvalidState("doctor %s is not pending approval (current status: %s)", doctor.ID, doctor.ApprovalStatus)
		}

		doctor.Reject(rejecter.ID, s.now())
		return tx.Doctors().UpdateApprovalFromPending(ctx, doctor)
	})
	if err != nil {
		return err
	}

	s.logger.Info("doctor rejected",
		zap.String("doctorId", doctorID),
		zap.String("rejecterId", rejecterID))
	return nil
}

// UpdateAvailability flips the doctor's availability flag.
func (s *DoctorService) UpdateAvailability(ctx context.Context, doctorID string, available bool) error {
	return s.store.Transact(ctx, func(tx repository.Store) error {
		doctor, err := tx.Doctors().GetByID(ctx, doctorID)
		if err != nil {
			return err
		}
		doctor.AvailabilityStatus = available
		return tx.Doctors().Update(ctx, doctor)
	})
}

// GetByID returns a doctor profile.
func (s *DoctorService) GetByID(ctx context.Context, doctorID string) (*models.Doctor, error) {
	return s.store.Doctors().GetByID(ctx, doctorID)
}

// GetByUserID returns the doctor profile linked to a user account.
func (s *DoctorService) GetByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	return s.store.Doctors().GetByUserID(ctx, userID)
}

// ListBookable returns doctors that may be scheduled: APPROVED and
// available. The same predicate the booking path enforces.
func (s *DoctorService) ListBookable(ctx context.Context) ([]models.Doctor, error) {
	return s.store.Doctors().ListBookable(ctx)
}

// ListPendingApproval returns doctor applications awaiting admin review.
func (s *DoctorService) ListPendingApproval(ctx context.Context) ([]models.Doctor, error) {
	return s.store.Doctors().ListByApprovalStatus(ctx, models.ApprovalPending)
}
