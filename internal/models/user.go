package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account record owned by the authentication subsystem. This
// service only reads it: the name for alert titles, the email for contact
// resolution and the gender marker for panic-button visibility.
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Phone     string             `json:"phone" bson:"phone"`
	Address   string             `json:"address" bson:"address"`
	Gender    string             `json:"gender" bson:"gender"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
	DeletedAt *time.Time         `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// DisplayName returns the profile name, or the fallback when the profile has none.
func (u *User) DisplayName(fallback string) string {
	if u == nil {
		return fallback
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return fallback
}

// CanUsePanicButton reports whether the client should show the panic button
// for this account. Matching is case-insensitive.
func (u *User) CanUsePanicButton(visibleGenders []string) bool {
	gender := strings.ToLower(strings.TrimSpace(u.Gender))
	if gender == "" {
		return false
	}
	for _, g := range visibleGenders {
		if strings.ToLower(strings.TrimSpace(g)) == gender {
			return true
		}
	}
	return false
}

// Caller is the authenticated identity an operation runs on behalf of.
type Caller struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
}

func (c *Caller) Authenticated() bool {
	return c != nil && !c.UserID.IsZero()
}
