package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/repository"
	"clinic-booking-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Store repository.Store
	Cfg   *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store repository.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Store: store, Cfg: cfg}
}

// RegisterRequest represents the request body for patient registration.
// Doctors register through the doctor application endpoint instead.
type RegisterRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"` // "2006-01-02"
	Gender      string `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
}

// Register handles patient registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "Invalid dateOfBirth, expected YYYY-MM-DD")
			return
		}
		dob = &parsed
	}

	var user models.User
	err := h.Store.Transact(c.Request.Context(), func(tx repository.Store) error {
		exists, err := tx.Users().ExistsByEmail(c.Request.Context(), req.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Validation("user with this email already exists")
		}

		user = models.User{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      req.Email,
			Phone:      req.Phone,
			Role:       models.RolePatient,
			IsActive:   true,
			IsVerified: false,
		}
		if err := user.SetPassword(req.Password); err != nil {
			return err
		}
		if err := tx.Users().Create(c.Request.Context(), &user); err != nil {
			return err
		}

		patient := models.Patient{
			UserID:      user.ID,
			DateOfBirth: dob,
			Gender:      models.Gender(req.Gender),
		}
		return tx.Patients().Create(c.Request.Context(), &patient)
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "User registered successfully", user.Sanitize())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken string               `json:"accessToken"`
	User        models.UserSanitized `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Store.Users().GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	// Doctors stay locked out until an admin approves their application.
	if !user.IsActive {
		utils.Forbidden(c, "Account is not active")
		return
	}

	accessToken, err := utils.GenerateToken(user, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token: "+err.Error())
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := h.Store.Users().Update(c.Request.Context(), user); err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken: accessToken,
		User:        user.Sanitize(),
	})
}

// GetProfile returns the authenticated user's account.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.Store.Users().GetByID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}
