package dto

import (
	"time"

	"github.com/noah-isme/admin-audit-api/internal/models"
	"github.com/noah-isme/admin-audit-api/pkg/props"
)

// ActivityListRequest defines the audit viewer's filters.
type ActivityListRequest struct {
	Page        int
	PageSize    int
	Category    string
	Events      []string
	SubjectType string
	ActorID     uint
	From        *time.Time
	To          *time.Time
	Search      string
}

// ActivityResponse serializes an activity record for the viewer. Actor
// is stored as a weak reference, so ActorName is resolved at query time
// and empty when the actor no longer exists or the record is anonymous.
type ActivityResponse struct {
	ID          uint                   `json:"id"`
	Category    string                 `json:"category"`
	Event       string                 `json:"event"`
	Message     string                 `json:"message"`
	ActorID     *uint                  `json:"actor_id"`
	ActorName   string                 `json:"actor_name,omitempty"`
	SubjectType string                 `json:"subject_type,omitempty"`
	SubjectID   *uint                  `json:"subject_id,omitempty"`
	Properties  map[string]interface{} `json:"properties"`
	VisitorType string                 `json:"visitor_type,omitempty"`
	DeviceName  string                 `json:"device_name,omitempty"`
	OSName      string                 `json:"os_name,omitempty"`
	BatchUUID   string                 `json:"batch_uuid,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// NewActivityResponse maps a record into its viewer representation. The
// convenience summary fields are resolved through missing-key-safe
// nested lookups because the properties schema varies per category.
func NewActivityResponse(record models.ActivityRecord, actorName string) ActivityResponse {
	properties := map[string]interface{}(record.Properties)
	return ActivityResponse{
		ID:          record.ID,
		Category:    record.Category,
		Event:       record.Event,
		Message:     record.Message,
		ActorID:     record.ActorID,
		ActorName:   actorName,
		SubjectType: record.SubjectType,
		SubjectID:   record.SubjectID,
		Properties:  properties,
		VisitorType: props.String(properties, "visitor_type"),
		DeviceName:  props.String(properties, "device.device_name"),
		OSName:      props.String(properties, "device.os.name"),
		BatchUUID:   record.BatchUUID,
		CreatedAt:   record.CreatedAt,
	}
}

// ActivityListResponse wraps a paginated viewer response.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// ActivityBulkDeleteRequest carries the ids selected for bulk deletion.
type ActivityBulkDeleteRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,dive,gt=0"`
}
