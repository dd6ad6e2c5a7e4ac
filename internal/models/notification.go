package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string
type DeliveryStatus string

const (
	NotificationTypePanicAlert NotificationType = "panic_alert"

	DeliveryStatusPending DeliveryStatus = "pending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusNoToken DeliveryStatus = "no_token"
	DeliveryStatusFailed  DeliveryStatus = "failed"
	DeliveryStatusSkipped DeliveryStatus = "skipped"
)

// Notification is the recipient-side copy of a PanicAlert. Alert fields are
// duplicated so the recipient's list renders without a join.
type Notification struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type         NotificationType   `json:"type" bson:"type"`
	TargetUserID primitive.ObjectID `json:"target_user_id" bson:"target_user_id"`
	Title        string             `json:"title" bson:"title"`
	Body         string             `json:"body" bson:"body"`
	IsRead       bool               `json:"is_read" bson:"is_read"`
	ReadAt       *time.Time         `json:"read_at,omitempty" bson:"read_at,omitempty"`

	Protocol     string             `json:"protocol" bson:"protocol"`
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id"`
	UserEmail    string             `json:"user_email" bson:"user_email"`
	UserName     string             `json:"user_name" bson:"user_name"`
	ContactEmail *string            `json:"contact_email" bson:"contact_email"`
	ContactPhone *string            `json:"contact_phone" bson:"contact_phone"`
	Latitude     float64            `json:"latitude" bson:"latitude"`
	Longitude    float64            `json:"longitude" bson:"longitude"`
	Address      string             `json:"address,omitempty" bson:"address,omitempty"`

	DeliveryStatus DeliveryStatus `json:"-" bson:"delivery_status"`
	DeliveryError  string         `json:"-" bson:"delivery_error,omitempty"`
	DeliveredAt    *time.Time     `json:"-" bson:"delivered_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewAlertNotification copies the alert fields into a notification addressed
// to targetUserID. The read flag starts false.
func NewAlertNotification(alert *PanicAlert, targetUserID primitive.ObjectID, title, body string) *Notification {
	return &Notification{
		Type:           NotificationTypePanicAlert,
		TargetUserID:   targetUserID,
		Title:          title,
		Body:           body,
		IsRead:         false,
		Protocol:       alert.Protocol,
		UserID:         alert.UserID,
		UserEmail:      alert.UserEmail,
		UserName:       alert.UserName,
		ContactEmail:   alert.ContactEmail,
		ContactPhone:   alert.ContactPhone,
		Latitude:       alert.Latitude,
		Longitude:      alert.Longitude,
		Address:        alert.Address,
		DeliveryStatus: DeliveryStatusPending,
	}
}

type NotificationList struct {
	Items       []*Notification `json:"items"`
	UnreadCount int64           `json:"unread_count"`
}

// NotificationCreatedEvent is published once per stored notification and
// drives the push dispatcher.
type NotificationCreatedEvent struct {
	EventID        string    `json:"event_id"`
	NotificationID string    `json:"notification_id"`
	TargetUserID   string    `json:"target_user_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Protocol       string    `json:"protocol"`
	Type           string    `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
}

// DeliveryOutcome is the result of one push delivery attempt.
type DeliveryOutcome struct {
	NotificationID string         `json:"notification_id"`
	Status         DeliveryStatus `json:"status"`
	MessageID      string         `json:"message_id,omitempty"`
	Error          string         `json:"error,omitempty"`
	Duplicate      bool           `json:"duplicate,omitempty"`
}
