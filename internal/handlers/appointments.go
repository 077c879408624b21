package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Appointments *services.AppointmentService
	Doctors      *services.DoctorService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService, doctors *services.DoctorService) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appointments, Doctors: doctors}
}

// BookAppointmentRequest represents the request body for booking an appointment.
type BookAppointmentRequest struct {
	DoctorID        string `json:"doctorId" binding:"required,uuid"`
	PatientID       string `json:"patientId" binding:"omitempty,uuid"` // ignored for patient callers
	Date            string `json:"date" binding:"required"`            // "2006-01-02"
	StartTime       string `json:"startTime" binding:"required"`       // "15:04"
	DurationMinutes int    `json:"durationMinutes"`
	Reason          string `json:"reason" binding:"required"`
}

// BookAppointment handles booking a new appointment.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	// Patients always book for themselves.
	patientID := req.PatientID
	if userRole == models.RolePatient {
		patient, err := h.Appointments.PatientByUserID(c.Request.Context(), userID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		patientID = patient.ID
	}
	if patientID == "" {
		utils.BadRequest(c, "patientId is required")
		return
	}

	appointment, err := h.Appointments.Book(c.Request.Context(), services.BookAppointmentInput{
		PatientID:       patientID,
		DoctorID:        req.DoctorID,
		Date:            date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// UpdateAppointmentRequest represents the request body for updating an
// appointment. Omitted fields are left unchanged.
type UpdateAppointmentRequest struct {
	Date            *string `json:"date"`
	StartTime       *string `json:"startTime"`
	DurationMinutes *int    `json:"durationMinutes"`
	Reason          *string `json:"reason"`
	Notes           *string `json:"notes"`
}

// UpdateAppointment handles rescheduling or annotating a scheduled appointment.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !h.authorizeParticipant(c, appointmentID) {
		return
	}

	input := services.UpdateAppointmentInput{
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
		Notes:           req.Notes,
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		input.Date = &date
	}

	appointment, err := h.Appointments.Update(c.Request.Context(), appointmentID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointment updated successfully", appointment)
}

// CancelAppointmentRequest represents the request body for cancelling an appointment.
type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelAppointment handles cancelling a scheduled appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var req CancelAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !h.authorizeParticipant(c, appointmentID) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	if err := h.Appointments.Cancel(c.Request.Context(), appointmentID, userID, req.Reason); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", nil)
}

// CompleteAppointment marks an appointment as completed. Doctors and admins only.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	appointmentID := c.Param("id")
	if !h.authorizeParticipant(c, appointmentID) {
		return
	}
	if err := h.Appointments.Complete(c.Request.Context(), appointmentID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment marked as completed", nil)
}

// MarkNoShow marks an appointment as a no-show. Doctors and admins only.
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	appointmentID := c.Param("id")
	if !h.authorizeParticipant(c, appointmentID) {
		return
	}
	if err := h.Appointments.MarkNoShow(c.Request.Context(), appointmentID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment marked as no-show", nil)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by the involved patient, the involved doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")
	if !h.authorizeParticipant(c, appointmentID) {
		return
	}
	appointment, err := h.Appointments.GetByID(c.Request.Context(), appointmentID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// GetAppointmentsForUser handles fetching appointments for the logged-in
// user: patients see their own, doctors see their schedule, admins see
// upcoming appointments.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var (
		appointments []models.Appointment
		err          error
	)
	switch userRole {
	case models.RolePatient:
		var patient *models.Patient
		if patient, err = h.Appointments.PatientByUserID(c.Request.Context(), userID); err == nil {
			appointments, err = h.Appointments.ListForPatient(c.Request.Context(), patient.ID)
		}
	case models.RoleDoctor:
		var doctor *models.Doctor
		if doctor, err = h.Doctors.GetByUserID(c.Request.Context(), userID); err == nil {
			appointments, err = h.Appointments.ListForDoctor(c.Request.Context(), doctor.ID)
		}
	case models.RoleAdmin:
		appointments, err = h.Appointments.ListUpcoming(c.Request.Context())
	default:
		utils.Forbidden(c, "User role not permitted to view appointments")
		return
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetDoctorSchedule returns a doctor's active appointments for a date.
func (h *AppointmentHandler) GetDoctorSchedule(c *gin.Context) {
	doctorID := c.Param("id")
	dateStr := c.Query("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.BadRequest(c, "Invalid or missing date query parameter, expected YYYY-MM-DD")
		return
	}

	appointments, err := h.Appointments.DoctorSchedule(c.Request.Context(), doctorID, date)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Schedule fetched successfully", appointments)
}

// authorizeParticipant allows the involved patient, the involved doctor, or
// an admin through. It writes the error response itself when access is denied.
func (h *AppointmentHandler) authorizeParticipant(c *gin.Context, appointmentID string) bool {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return false
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleAdmin {
		return true
	}

	appointment, err := h.Appointments.GetByID(c.Request.Context(), appointmentID)
	if err != nil {
		utils.RespondError(c, err)
		return false
	}

	switch userRole {
	case models.RolePatient:
		patient, err := h.Appointments.PatientByUserID(c.Request.Context(), userID)
		if err == nil && patient.ID == appointment.PatientID {
			return true
		}
	case models.RoleDoctor:
		doctor, err := h.Doctors.GetByUserID(c.Request.Context(), userID)
		if err == nil && doctor.ID == appointment.DoctorID {
			return true
		}
	}

	utils.Forbidden(c, "You are not authorized to access this appointment")
	return false
}
