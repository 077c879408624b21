package models

import (
	"regexp"
	"time"
)

// ApprovalStatus represents where a doctor application sits in the review workflow
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// License numbers look like ZA-GEN-001-2024.
var licenseNumberPattern = regexp.MustCompile(`^[A-Z]{2}-[A-Z]{3}-[0-9]{3}-[0-9]{4}$`)

// ValidLicenseNumber reports whether value matches the required license format.
func ValidLicenseNumber(value string) bool {
	return licenseNumberPattern.MatchString(value)
}

// Doctor represents a medical professional profile linked to a user account
type Doctor struct {
	BaseModel
	UserID             string         `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization     string         `gorm:"size:200;not null" json:"specialization"`
	LicenseNumber      string         `gorm:"size:100;uniqueIndex;not null" json:"licenseNumber"`
	YearsExperience    int            `gorm:"default:0" json:"yearsExperience"`
	Qualification      string         `gorm:"size:500" json:"qualification,omitempty"`
	Bio                string         `gorm:"type:text" json:"bio,omitempty"`
	AvailabilityStatus bool           `gorm:"default:true" json:"availabilityStatus"`
	ApprovalStatus     ApprovalStatus `gorm:"size:20;default:'PENDING'" json:"approvalStatus"`
	ApprovedByID       *string        `gorm:"size:36" json:"approvedById,omitempty"`
	ApprovedAt         *time.Time     `json:"approvedAt,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsApproved reports whether the doctor has passed admin review.
func (d *Doctor) IsApproved() bool {
	return d.ApprovalStatus == ApprovalApproved
}

// IsBookable is the single predicate deciding whether the doctor may be
// scheduled. Both the booking path and the doctor listing consult it.
func (d *Doctor) IsBookable() bool {
	return d.IsApproved() && d.AvailabilityStatus
}

// Approve marks the doctor as approved and records who did it and when.
func (d *Doctor) Approve(approverID string, at time.Time) {
	d.ApprovalStatus = ApprovalApproved
	d.ApprovedByID = &approverID
	d.ApprovedAt = &at
}

// Reject marks the doctor as rejected and records who did it and when.
func (d *Doctor) Reject(rejecterID string, at time.Time) {
	d.ApprovalStatus = ApprovalRejected
	d.ApprovedByID = &rejecterID
	d.ApprovedAt = &at
}
