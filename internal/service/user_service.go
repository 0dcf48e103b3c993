package service

import (
	"context"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/admin-audit-api/internal/dto"
	"github.com/noah-isme/admin-audit-api/internal/events"
	"github.com/noah-isme/admin-audit-api/internal/models"
	"github.com/noah-isme/admin-audit-api/internal/repository"
)

// ActionContext identifies who triggered a mutation and from which
// request, passed explicitly into every call instead of being read from
// a request-scoped global. A nil Actor marks a system-originated change.
type ActionContext struct {
	Actor   *events.Actor
	Request events.RequestMeta
}

// UserService implements user management. Every mutation publishes a
// lifecycle domain event carrying the attribute snapshot the audit
// bridges need.
type UserService interface {
	Create(ctx context.Context, action ActionContext, req dto.UserCreateRequest) (dto.UserResponse, error)
	List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Update(ctx context.Context, action ActionContext, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, action ActionContext, id uint) error
	Restore(ctx context.Context, action ActionContext, id uint) (dto.UserResponse, error)
	ForceDelete(ctx context.Context, action ActionContext, id uint) error
}

type userService struct {
	repo       repository.UserRepository
	dispatcher *events.Dispatcher
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewUserService constructs the user management service.
func NewUserService(repo repository.UserRepository, dispatcher *events.Dispatcher, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:       repo,
		dispatcher: dispatcher,
		validator:  validate,
		logger:     logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Create(ctx context.Context, action ActionContext, req dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hashed),
		Gender:    normalizeGender(req.Gender),
		Role:      defaultString(req.Role, "user"),
		AvatarURL: req.AvatarURL,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.dispatcher.Publish(ctx, events.UserLifecycle{
		Kind:       models.ActivityEventCreated,
		User:       user,
		Attributes: user.Attributes(),
		Actor:      action.Actor,
		Request:    action.Request,
	})

	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error) {
	filter := repository.UserFilter{
		Page:           req.Page,
		PageSize:       req.PageSize,
		Search:         strings.TrimSpace(req.Search),
		Role:           strings.TrimSpace(req.Role),
		IncludeDeleted: req.IncludeDeleted,
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
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

	return dto.UserListResponse{Items: items, Pagination: pagination}, nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, action ActionContext, id uint, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Gender != nil {
		updates["gender"] = string(normalizeGender(*req.Gender))
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.Password != nil {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return dto.UserResponse{}, hashErr
		}
		updates["password"] = string(hashed)
	}

	if len(updates) == 0 {
		return dto.NewUserResponse(before), nil
	}

	after, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return dto.UserResponse{}, err
	}

	changedFields, oldValues := diffUsers(before, after, req.Password != nil)
	if len(changedFields) > 0 {
		s.dispatcher.Publish(ctx, events.UserLifecycle{
			Kind:          models.ActivityEventUpdated,
			User:          after,
			Attributes:    after.Attributes(),
			ChangedFields: changedFields,
			OldValues:     oldValues,
			Actor:         action.Actor,
			Request:       action.Request,
		})
	}

	return dto.NewUserResponse(after), nil
}

func (s *userService) Delete(ctx context.Context, action ActionContext, id uint) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	user, err := s.repo.GetByIDIncludingDeleted(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", id).Msg("failed to reload user after soft delete")
		return nil
	}

	s.dispatcher.Publish(ctx, events.UserLifecycle{
		Kind:       models.ActivityEventDeleted,
		User:       user,
		Attributes: user.Attributes(),
		Actor:      action.Actor,
		Request:    action.Request,
	})
	return nil
}

func (s *userService) Restore(ctx context.Context, action ActionContext, id uint) (dto.UserResponse, error) {
	user, err := s.repo.Restore(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.dispatcher.Publish(ctx, events.UserLifecycle{
		Kind:       models.ActivityEventRestored,
		User:       user,
		Attributes: user.Attributes(),
		Actor:      action.Actor,
		Request:    action.Request,
	})

	return dto.NewUserResponse(user), nil
}

func (s *userService) ForceDelete(ctx context.Context, action ActionContext, id uint) error {
	user, err := s.repo.GetByIDIncludingDeleted(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.ForceDelete(ctx, id); err != nil {
		return err
	}

	s.dispatcher.Publish(ctx, events.UserLifecycle{
		Kind:       models.ActivityEventForceDeleted,
		User:       user,
		Attributes: user.Attributes(),
		Actor:      action.Actor,
		Request:    action.Request,
	})
	return nil
}

// diffUsers returns the changed field names and, for each, its
// pre-change value. Password changes are reported but the values stay
// masked: credentials never reach the audit trail.
func diffUsers(before, after models.User, passwordChanged bool) ([]string, map[string]interface{}) {
	beforeAttrs := before.Attributes()
	afterAttrs := after.Attributes()

	changed := make([]string, 0)
	old := map[string]interface{}{}
	for _, field := range []string{"name", "email", "gender", "role", "avatar_url", "deleted_at"} {
		if beforeAttrs[field] != afterAttrs[field] {
			changed = append(changed, field)
			old[field] = beforeAttrs[field]
		}
	}
	if passwordChanged {
		changed = append(changed, "password")
		old["password"] = "***"
	}
	return changed, old
}

func normalizeGender(raw string) models.Gender {
	switch models.Gender(strings.ToLower(strings.TrimSpace(raw))) {
	case models.GenderMasculine:
		return models.GenderMasculine
	case models.GenderFeminine:
		return models.GenderFeminine
	default:
		return models.GenderNeutral
	}
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
