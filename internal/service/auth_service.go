package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/admin-audit-api/internal/dto"
	"github.com/noah-isme/admin-audit-api/internal/events"
	"github.com/noah-isme/admin-audit-api/internal/models"
	"github.com/noah-isme/admin-audit-api/internal/repository"
)

// ErrInvalidCredentials is returned when email or password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// GuardName identifies the authentication realm on audit records.
const GuardName = "api"

// AuthService implements registration, login and logout, publishing the
// corresponding authentication events for the audit bridges.
type AuthService interface {
	Register(ctx context.Context, meta events.RequestMeta, req dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, meta events.RequestMeta, req dto.LoginRequest) (dto.AuthResponse, error)
	Logout(ctx context.Context, meta events.RequestMeta, actor events.Actor)
}

type authService struct {
	users      repository.UserRepository
	dispatcher *events.Dispatcher
	validator  *validator.Validate
	jwtSecret  string
	tokenTTL   time.Duration
	logger     zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, dispatcher *events.Dispatcher, validate *validator.Validate, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		users:      users,
		dispatcher: dispatcher,
		validator:  validate,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		logger:     logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, meta events.RequestMeta, req dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashed),
		Gender:   normalizeGender(req.Gender),
		Role:     "user",
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.dispatcher.Publish(ctx, events.UserRegistered{User: user, Request: meta})

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, meta events.RequestMeta, req dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.publishLoginFailed(ctx, email, meta)
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.publishLoginFailed(ctx, email, meta)
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	s.dispatcher.Publish(ctx, events.LoginSucceeded{
		Actor:   events.Actor{ID: user.ID, Name: user.Name, Email: user.Email},
		Guard:   GuardName,
		Request: meta,
	})

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Logout(ctx context.Context, meta events.RequestMeta, actor events.Actor) {
	s.dispatcher.Publish(ctx, events.LoggedOut{Actor: actor, Guard: GuardName, Request: meta})
}

func (s *authService) publishLoginFailed(ctx context.Context, email string, meta events.RequestMeta) {
	s.dispatcher.Publish(ctx, events.LoginFailed{Email: email, Guard: GuardName, Request: meta})
}

func (s *authService) issueToken(user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
