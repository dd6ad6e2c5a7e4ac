package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DevicePlatform string

const (
	DevicePlatformAndroid DevicePlatform = "android"
	DevicePlatformIOS     DevicePlatform = "ios"
	DevicePlatformWeb     DevicePlatform = "web"
)

// DeviceToken is the single push address of a user. A new registration
// replaces the previous token.
type DeviceToken struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Token     string             `json:"token" bson:"token"`
	Platform  DevicePlatform     `json:"platform" bson:"platform"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

type DeviceTokenRegistration struct {
	Permission PermissionStatus `json:"permission" validate:"required,oneof=granted denied undetermined"`
	Token      string           `json:"token"`
	Platform   DevicePlatform   `json:"platform" validate:"omitempty,oneof=android ios web"`
}
