package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

// DoctorHandler handles doctor profile and approval workflow requests.
type DoctorHandler struct {
	Doctors *services.DoctorService
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(doctors *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{Doctors: doctors}
}

// ApplyAsDoctorRequest represents the request body for a doctor application.
type ApplyAsDoctorRequest struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	Phone           string `json:"phone"`
	Specialization  string `json:"specialization" binding:"required"`
	LicenseNumber   string `json:"licenseNumber" binding:"required"`
	YearsExperience int    `json:"yearsExperience" binding:"omitempty,min=0,max=70"`
	Qualification   string `json:"qualification"`
	Bio             string `json:"bio"`
}

// Apply handles a new doctor application. The account stays inactive and the
// profile PENDING until an admin approves it.
func (h *DoctorHandler) Apply(c *gin.Context) {
	var req ApplyAsDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor, err := h.Doctors.Apply(c.Request.Context(), services.ApplyAsDoctorInput{
		Email:           req.Email,
		Password:        req.Password,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Specialization:  req.Specialization,
		LicenseNumber:   req.LicenseNumber,
		YearsExperience: req.YearsExperience,
		Qualification:   req.Qualification,
		Bio:             req.Bio,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Doctor application submitted successfully", doctor)
}

// Approve handles admin approval of a pending doctor application.
func (h *DoctorHandler) Approve(c *gin.Context) {
	doctorID := c.Param("id")
	approverID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Doctors.Approve(c.Request.Context(), doctorID, approverID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Doctor approved successfully", nil)
}

// Reject handles admin rejection of a pending doctor application.
func (h *DoctorHandler) Reject(c *gin.Context) {
	doctorID := c.Param("id")
	rejecterID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Doctors.Reject(c.Request.Context(), doctorID, rejecterID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Doctor rejected successfully", nil)
}

// UpdateAvailabilityRequest represents the request body for toggling availability.
type UpdateAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// UpdateAvailability toggles whether the doctor accepts new bookings.
// Doctors manage their own flag; admins can manage anyone's.
func (h *DoctorHandler) UpdateAvailability(c *gin.Context) {
	doctorID := c.Param("id")

	var req UpdateAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleDoctor {
		userID, _ := middleware.GetUserIDFromContext(c)
		own, err := h.Doctors.GetByUserID(c.Request.Context(), userID)
		if err != nil || own.ID != doctorID {
			utils.Forbidden(c, "Doctors can only update their own availability")
			return
		}
	}

	if err := h.Doctors.UpdateAvailability(c.Request.Context(), doctorID, *req.Available); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Doctor availability updated successfully", nil)
}

// GetDoctors returns all bookable doctors (approved and available).
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.Doctors.ListBookable(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetPendingDoctors returns doctor applications awaiting review. Admin only.
func (h *DoctorHandler) GetPendingDoctors(c *gin.Context) {
	doctors, err := h.Doctors.ListPendingApproval(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Pending doctors fetched successfully", doctors)
}

// GetDoctorByID returns a single doctor profile.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctor, err := h.Doctors.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}
