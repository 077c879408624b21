package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidLicenseNumber(t *testing.T) {
	valid := []string{"ZA-GEN-001-2024", "US-CAR-123-1999", "GB-NEU-999-2030"}
	for _, license := range valid {
		assert.True(t, ValidLicenseNumber(license), license)
	}

	invalid := []string{
		"",
		"za-gen-001-2024",   // lowercase
		"ZAX-GEN-001-2024",  // 3-letter country
		"ZA-GE-001-2024",    // 2-letter specialty
		"ZA-GEN-01-2024",    // 2-digit sequence
		"ZA-GEN-001-24",     // 2-digit year
		"ZA-GEN-001-2024 ",  // trailing space
		" ZA-GEN-001-2024",  // leading space
		"ZA_GEN_001_2024",   // wrong separators
		"ZA-GEN-001-2024-1", // extra segment
	}
	for _, license := range invalid {
		assert.False(t, ValidLicenseNumber(license), license)
	}
}

func TestIsBookable(t *testing.T) {
	tests := []struct {
		approval  ApprovalStatus
		available bool
		bookable  bool
	}{
		{ApprovalApproved, true, true},
		{ApprovalApproved, false, false},
		{ApprovalPending, true, false},
		{ApprovalRejected, true, false},
	}
	for _, tt := range tests {
		d := &Doctor{ApprovalStatus: tt.approval, AvailabilityStatus: tt.available}
		assert.Equal(t, tt.bookable, d.IsBookable(), "%s/available=%v", tt.approval, tt.available)
	}
}

func TestApproveAndReject(t *testing.T) {
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	d := &Doctor{ApprovalStatus: ApprovalPending}
	d.Approve("admin-1", at)
	assert.Equal(t, ApprovalApproved, d.ApprovalStatus)
	require.NotNil(t, d.ApprovedByID)
	assert.Equal(t, "admin-1", *d.ApprovedByID)
	assert.Equal(t, at, *d.ApprovedAt)

	r := &Doctor{ApprovalStatus: ApprovalPending}
	r.Reject("admin-2", at)
	assert.Equal(t, ApprovalRejected, r.ApprovalStatus)
	require.NotNil(t, r.ApprovedByID)
	assert.Equal(t, "admin-2", *r.ApprovedByID)
}
