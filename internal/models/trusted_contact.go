package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrustedContact is the one person a user wants alerted. The email is how
// the contact is resolved to an app account; the phone is informational and
// used for the SMS fallback.
type TrustedContact struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Email     string             `json:"email" bson:"email"`
	Phone     string             `json:"phone" bson:"phone"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

type SetTrustedContactRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}
