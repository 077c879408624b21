package models

// NotificationType represents the category of a notification
type NotificationType string

const (
	NotifyNewAppointment          NotificationType = "NEW_APPOINTMENT"
	NotifyAppointmentConfirmation NotificationType = "APPOINTMENT_CONFIRMATION"
	NotifyAppointmentCancellation NotificationType = "APPOINTMENT_CANCELLATION"
	NotifyAppointmentReminder     NotificationType = "APPOINTMENT_REMINDER"
	NotifySystem                  NotificationType = "SYSTEM"
)

// Notification represents an in-app message delivered to a single user
type Notification struct {
	BaseModel
	UserID  string           `gorm:"size:36;index;not null" json:"userId"`
	Type    NotificationType `gorm:"size:40;not null" json:"type"`
	Title   string           `gorm:"size:200;not null" json:"title"`
	Message string           `gorm:"size:1000" json:"message"`
	IsRead  bool             `gorm:"default:false" json:"isRead"`
}

// MarkAsRead flags the notification as seen.
func (n *Notification) MarkAsRead() {
	n.IsRead = true
}
