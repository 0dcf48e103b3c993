package service

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/admin-audit-api/internal/dto"
	"github.com/noah-isme/admin-audit-api/internal/models"
	"github.com/noah-isme/admin-audit-api/internal/repository"
)

// ActivityQueryService is the read side of the audit subsystem: the
// viewer's filterable, paginated window onto the activity store, plus
// its bulk delete action.
type ActivityQueryService interface {
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
	Get(ctx context.Context, id uint) (dto.ActivityResponse, error)
	BulkDelete(ctx context.Context, req dto.ActivityBulkDeleteRequest) (int64, error)
}

type activityQueryService struct {
	activities repository.ActivityRepository
	users      repository.UserRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewActivityQueryService constructs the viewer service.
func NewActivityQueryService(activities repository.ActivityRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ActivityQueryService {
	return &activityQueryService{
		activities: activities,
		users:      users,
		validator:  validate,
		logger:     logger.With().Str("component", "activity_query_service").Logger(),
	}
}

func (s *activityQueryService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityFilter{
		Page:        req.Page,
		PageSize:    req.PageSize,
		Category:    strings.TrimSpace(req.Category),
		SubjectType: strings.TrimSpace(req.SubjectType),
		From:        req.From,
		To:          req.To,
		Search:      strings.TrimSpace(req.Search),
	}
	for _, event := range req.Events {
		if trimmed := strings.TrimSpace(event); trimmed != "" {
			filter.Events = append(filter.Events, trimmed)
		}
	}
	if req.ActorID > 0 {
		filter.ActorID = &req.ActorID
	}

	records, total, err := s.activities.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	actorNames := s.resolveActorNames(ctx, records)

	items := make([]dto.ActivityResponse, 0, len(records))
	for _, record := range records {
		name := ""
		if record.ActorID != nil {
			name = actorNames[*record.ActorID]
		}
		items = append(items, dto.NewActivityResponse(record, name))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: items, Pagination: pagination}, nil
}

func (s *activityQueryService) Get(ctx context.Context, id uint) (dto.ActivityResponse, error) {
	record, err := s.activities.FindByID(ctx, id)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	names := s.resolveActorNames(ctx, []models.ActivityRecord{record})
	name := ""
	if record.ActorID != nil {
		name = names[*record.ActorID]
	}
	return dto.NewActivityResponse(record, name), nil
}

func (s *activityQueryService) BulkDelete(ctx context.Context, req dto.ActivityBulkDeleteRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, err
	}

	deleted, err := s.activities.DeleteByIDs(ctx, req.IDs)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("deleted", deleted).Int("requested", len(req.IDs)).Msg("activity records deleted")
	return deleted, nil
}

// resolveActorNames turns the weak actor references on a page of
// records into display names. Missing actors resolve to the empty
// string rather than an error.
func (s *activityQueryService) resolveActorNames(ctx context.Context, records []models.ActivityRecord) map[uint]string {
	seen := map[uint]struct{}{}
	ids := make([]uint, 0)
	for _, record := range records {
		if record.ActorID == nil {
			continue
		}
		if _, ok := seen[*record.ActorID]; ok {
			continue
		}
		seen[*record.ActorID] = struct{}{}
		ids = append(ids, *record.ActorID)
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve activity actors")
		return nil
	}

	names := make(map[uint]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Name
	}
	return names
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
