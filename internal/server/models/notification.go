package models

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotificationSystem      NotificationType = "SYSTEM"
	NotificationBusiness    NotificationType = "BUSINESS"
	NotificationTransaction NotificationType = "TRANSACTION"
	NotificationSecurity    NotificationType = "SECURITY"
	NotificationOther       NotificationType = "OTHER"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationSystem, NotificationBusiness, NotificationTransaction, NotificationSecurity, NotificationOther:
		return true
	}
	return false
}

type NotificationStatus string

const (
	NotificationUnread   NotificationStatus = "UNREAD"
	NotificationRead     NotificationStatus = "READ"
	NotificationArchived NotificationStatus = "ARCHIVED"
)

func (s NotificationStatus) Valid() bool {
	switch s {
	case NotificationUnread, NotificationRead, NotificationArchived:
		return true
	}
	return false
}

// Notification is a message addressed to one user. Data is an arbitrary
// JSON object stored as JSONB.
type Notification struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Type      NotificationType   `json:"type"`
	Status    NotificationStatus `json:"status"`
	Data      json.RawMessage    `json:"data"`
	CreatedAt time.Time          `json:"created_at"`
	ReadAt    *time.Time         `json:"read_at,omitempty"`
}

// NotificationFilter narrows a notification listing; empty fields match all.
type NotificationFilter struct {
	Status NotificationStatus
	Type   NotificationType
}
