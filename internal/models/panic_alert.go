package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PanicAlert is the immutable record of one panic-button press.
type PanicAlert struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Protocol     string             `json:"protocol" bson:"protocol"`
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id"`
	UserEmail    string             `json:"user_email" bson:"user_email"`
	UserName     string             `json:"user_name" bson:"user_name"`
	ContactEmail *string            `json:"contact_email" bson:"contact_email"`
	ContactPhone *string            `json:"contact_phone" bson:"contact_phone"`
	Latitude     float64            `json:"latitude" bson:"latitude"`
	Longitude    float64            `json:"longitude" bson:"longitude"`
	Address      string             `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

func (a *PanicAlert) Coordinates() Coordinates {
	return Coordinates{Latitude: a.Latitude, Longitude: a.Longitude}
}

type EmitAlertRequest struct {
	LocationPermission PermissionStatus `json:"location_permission" validate:"required,oneof=granted denied undetermined"`
	Latitude           *float64         `json:"latitude" validate:"omitempty,latitude"`
	Longitude          *float64         `json:"longitude" validate:"omitempty,longitude"`
}

// AlertResult is what the sender sees after pressing the button. Delivered
// only says whether an in-app notification record was written.
type AlertResult struct {
	Protocol  string    `json:"protocol"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}

// PanicButtonAvailability tells the client whether to show the panic button.
// It is advisory: EmitAlert does not enforce it.
type PanicButtonAvailability struct {
	Visible           bool `json:"visible"`
	HasTrustedContact bool `json:"has_trusted_contact"`
}
