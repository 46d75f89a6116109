package entities

import (
	"time"

	"eventhub-be/internal/validation"
)

// DefaultPhotoURL is stored for users who register without a photo.
const DefaultPhotoURL = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_960_720.png"

// User represents a user record in the database
type User struct {
	ID           string    `bson:"_id" json:"_id"` // UUID
	Name         string    `bson:"name" json:"name" validate:"required" label:"Name"`
	Email        string    `bson:"email" json:"email" validate:"required,email_basic" label:"Email"`
	PasswordHash string    `bson:"password,omitempty" json:"-" validate:"required" label:"Password"` // Never exposed in JSON
	PhotoURL     string    `bson:"photoURL" json:"photoURL"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Validate applies the user schema rules and returns the failures, if any.
func (u *User) Validate() []string {
	return validation.Struct(u)
}
