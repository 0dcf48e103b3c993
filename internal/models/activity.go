package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity record categories. Category groups records by the subsystem
// that produced them.
const (
	ActivityCategoryAccess  = "access"
	ActivityCategoryAuth    = "authentication"
	ActivityCategoryDefault = "default"
)

// Known lifecycle and authentication events. The viewer uses these for
// labeling; the column is open-ended on purpose, so unknown events are
// accepted and stored verbatim.
const (
	ActivityEventCreated      = "created"
	ActivityEventUpdated      = "updated"
	ActivityEventDeleted      = "deleted"
	ActivityEventRestored     = "restored"
	ActivityEventForceDeleted = "force_deleted"
	ActivityEventLogin        = "login"
	ActivityEventLoginFailed  = "login_failed"
	ActivityEventLogout       = "logout"
	ActivityEventRegistered   = "registered"
)

// Visitor type classification for access records.
const (
	VisitorTypeBot           = "bot"
	VisitorTypeAuthenticated = "authenticated_user"
	VisitorTypeAnonymous     = "anonymous_visitor"
)

// ActivityRecord is a persisted audit entry: who did what, to what, when
// and from where. Records are append-only; the viewer's bulk delete is
// the only mutation path.
type ActivityRecord struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Category    string            `gorm:"size:64;not null;index" json:"category"`
	Event       string            `gorm:"size:64;index" json:"event"`
	Message     string            `gorm:"size:512" json:"message"`
	ActorID     *uint             `gorm:"index" json:"actor_id"`
	SubjectType string            `gorm:"size:64;index" json:"subject_type"`
	SubjectID   *uint             `json:"subject_id"`
	Properties  datatypes.JSONMap `gorm:"type:json" json:"properties"`
	BatchUUID   string            `gorm:"size:36" json:"batch_uuid,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
