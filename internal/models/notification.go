package models

import "time"

// NotificationType classifies a feed entry.
type NotificationType string

const (
	NotificationConfirmation NotificationType = "confirmation"
	NotificationReminder     NotificationType = "reminder"
	NotificationInvitation   NotificationType = "invitation"
	NotificationAnnouncement NotificationType = "announcement"
)

// NotificationTypes lists every type in a stable order.
var NotificationTypes = []NotificationType{
	NotificationConfirmation,
	NotificationReminder,
	NotificationInvitation,
	NotificationAnnouncement,
}

// Notification is a record of the feed stored under KeyNotifications.
type Notification struct {
	ID      string           `json:"id"`
	Message string           `json:"message"`
	Date    time.Time        `json:"date"`
	Read    bool             `json:"read"`
	Type    NotificationType `json:"type"`
}
