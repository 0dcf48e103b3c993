package models

import (
	"time"

	"gorm.io/gorm"
)

// Gender drives the grammatical inflection of lifecycle messages.
type Gender string

// Supported grammatical genders.
const (
	GenderMasculine Gender = "masculine"
	GenderFeminine  Gender = "feminine"
	GenderNeutral   Gender = "neutral"
)

// User represents a panel account. Deletion is soft by default; a force
// delete removes the row permanently.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Gender    Gender         `gorm:"size:16;default:neutral" json:"gender"`
	Role      string         `gorm:"size:32;default:user" json:"role"`
	AvatarURL string         `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Attributes returns the auditable field values of the user. Password is
// never part of the snapshot.
func (u User) Attributes() map[string]interface{} {
	attrs := map[string]interface{}{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"gender":     string(u.Gender),
		"role":       u.Role,
		"avatar_url": u.AvatarURL,
	}
	if u.DeletedAt.Valid {
		attrs["deleted_at"] = u.DeletedAt.Time
	} else {
		attrs["deleted_at"] = nil
	}
	return attrs
}
