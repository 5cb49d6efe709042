package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	NotificationTypeInfo    = "info"
	NotificationTypeWarning = "warning"
	NotificationTypeSystem  = "system"
)

// MaxTitleLength matches the title column width of the SQL schemas.
const MaxTitleLength = 255

var (
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrInvalidNotification     = errors.New("invalid notification")
	ErrNotificationNotFound    = errors.New("notification not found")
)

func IsValidNotificationType(value string) bool {
	switch value {
	case NotificationTypeInfo, NotificationTypeWarning, NotificationTypeSystem:
		return true
	default:
		return false
	}
}

// ValidateNotification checks the user supplied fields of a notification.
func ValidateNotification(room, typ, title, body string) error {
	switch {
	case room == "":
		return fmt.Errorf("%w: room is required", ErrInvalidNotification)
	case title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidNotification)
	case body == "":
		return fmt.Errorf("%w: body is required", ErrInvalidNotification)
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidNotification, MaxTitleLength)
	}
	if !IsValidNotificationType(typ) {
		return ErrInvalidNotificationType
	}
	return nil
}
