package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/admin-audit-api/internal/models"
)

// ActivityFilter narrows activity record queries for the audit viewer.
// Events is a multi-select; Search matches message and category.
type ActivityFilter struct {
	Page        int
	PageSize    int
	Category    string
	Events      []string
	SubjectType string
	ActorID     *uint
	From        *time.Time
	To          *time.Time
	Search      string
}

// ActivityRepository persists the audit trail. Records are append-only;
// DeleteByIDs backs the viewer's bulk delete action.
type ActivityRepository interface {
	Create(ctx context.Context, record *models.ActivityRecord) error
	FindByID(ctx context.Context, id uint) (models.ActivityRecord, error)
	List(ctx context.Context, filter ActivityFilter) ([]models.ActivityRecord, int64, error)
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, record *models.ActivityRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *activityRepository) FindByID(ctx context.Context, id uint) (models.ActivityRecord, error) {
	var record models.ActivityRecord
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return models.ActivityRecord{}, err
	}
	return record, nil
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]models.ActivityRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityRecord{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if len(filter.Events) > 0 {
		query = query.Where("event IN ?", filter.Events)
	}

	if filter.SubjectType != "" {
		query = query.Where("subject_type = ?", filter.SubjectType)
	}

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(message) LIKE ? OR LOWER(category) LIKE ?", like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var records []models.ActivityRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *activityRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Delete(&models.ActivityRecord{}, ids)
	return result.RowsAffected, result.Error
}
