package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
)

// Appointment duration bounds in minutes.
const (
	MinDurationMinutes     = 15
	MaxDurationMinutes     = 120
	DefaultDurationMinutes = 30
)

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel
	PatientID          string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID           string            `gorm:"size:36;index:idx_doctor_date;not null" json:"doctorId"`
	AppointmentDate    time.Time         `gorm:"type:date;index:idx_doctor_date;not null" json:"appointmentDate"`
	StartTime          string            `gorm:"size:5;not null" json:"startTime"` // "15:04" wall clock
	DurationMinutes    int               `gorm:"default:30" json:"durationMinutes"`
	Status             AppointmentStatus `gorm:"size:20;default:'SCHEDULED'" json:"status"`
	Reason             string            `gorm:"size:500" json:"reason"`
	Notes              string            `gorm:"type:text" json:"notes,omitempty"`
	CancellationReason string            `gorm:"size:500" json:"cancellationReason,omitempty"`
	CancelledByID      *string           `gorm:"size:36" json:"cancelledById,omitempty"`
	CancelledAt        *time.Time        `json:"cancelledAt,omitempty"`

	// Relations
	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
}

// IsTerminal reports whether the appointment has reached a final state.
// No transition is permitted out of a terminal state.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Cancel moves the appointment into the cancelled state and records
// who cancelled it, when and why.
func (a *Appointment) Cancel(byUserID, reason string, at time.Time) {
	a.Status = StatusCancelled
	a.CancelledByID = &byUserID
	a.CancelledAt = &at
	a.CancellationReason = reason
}

// ParseClock converts a "15:04" wall-clock string into minutes since midnight.
func ParseClock(value string) (int, bool) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// StartMinute returns the appointment start as minutes since midnight.
// Stored values are validated on the way in, so a malformed value reads as 0.
func (a *Appointment) StartMinute() int {
	m, _ := ParseClock(a.StartTime)
	return m
}

// EndMinute returns the exclusive end of the appointment slot.
func (a *Appointment) EndMinute() int {
	return a.StartMinute() + a.DurationMinutes
}

// Overlaps reports whether the half-open interval [start, start+duration)
// collides with this appointment's slot. Touching endpoints do not overlap.
func (a *Appointment) Overlaps(startMinute, durationMinutes int) bool {
	return startMinute < a.EndMinute() && startMinute+durationMinutes > a.StartMinute()
}
