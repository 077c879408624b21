package models

import (
	"time"
)

// Gender enum
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Patient represents patient demographics linked to a user account
type Patient struct {
	BaseModel
	UserID           string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DateOfBirth      *time.Time `gorm:"type:date" json:"dateOfBirth,omitempty"`
	Gender           Gender     `gorm:"size:10" json:"gender,omitempty"`
	Address          string     `gorm:"size:500" json:"address,omitempty"`
	EmergencyContact string     `gorm:"size:100" json:"emergencyContact,omitempty"`
	EmergencyPhone   string     `gorm:"size:30" json:"emergencyPhone,omitempty"`
	BloodType        string     `gorm:"size:5" json:"bloodType,omitempty"`
	Allergies        string     `gorm:"type:text" json:"allergies,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
