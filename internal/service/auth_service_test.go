package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admin-audit-api/internal/dto"
	"github.com/noah-isme/admin-audit-api/internal/events"
	"github.com/noah-isme/admin-audit-api/internal/repository"
)

type authEventRecorder struct {
	events []events.Event
}

func (r *authEventRecorder) handle(_ context.Context, event events.Event) {
	r.events = append(r.events, event)
}

func newAuthServiceHarness(t *testing.T) (AuthService, *authEventRecorder) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewUserRepository(db)

	dispatcher := events.NewDispatcher(zerolog.Nop())
	recorder := &authEventRecorder{}
	for _, topic := range []string{
		events.TopicLoginSucceeded,
		events.TopicLoginFailed,
		events.TopicLoggedOut,
		events.TopicUserRegistered,
	} {
		dispatcher.Subscribe(topic, recorder.handle)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(repo, dispatcher, validate, "test-secret", time.Hour, zerolog.Nop()), recorder
}

func TestAuthServiceRegisterIssuesTokenAndPublishes(t *testing.T) {
	svc, recorder := newAuthServiceHarness(t)

	response, err := svc.Register(context.Background(), events.RequestMeta{IP: "10.0.0.1"}, dto.RegisterRequest{
		Name:     "Sam",
		Email:    "sam@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)
	require.Equal(t, "sam@example.com", response.User.Email)

	require.Len(t, recorder.events, 1)
	registered, ok := recorder.events[0].(events.UserRegistered)
	require.True(t, ok)
	require.Equal(t, "sam@example.com", registered.User.Email)
	require.Equal(t, "10.0.0.1", registered.Request.IP)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, recorder := newAuthServiceHarness(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, events.RequestMeta{}, dto.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	response, err := svc.Login(ctx, events.RequestMeta{IP: "10.0.0.2"}, dto.LoginRequest{
		Email:    "Ana@Example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	token, err := jwt.Parse(response.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, "Ana", claims["name"])
	require.Equal(t, "user", claims["role"])

	require.Len(t, recorder.events, 2)
	login, ok := recorder.events[1].(events.LoginSucceeded)
	require.True(t, ok)
	require.Equal(t, "Ana", login.Actor.Name)
	require.Equal(t, GuardName, login.Guard)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, recorder := newAuthServiceHarness(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, events.RequestMeta{}, dto.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, events.RequestMeta{}, dto.LoginRequest{
		Email:    "ana@example.com",
		Password: "wrongpassword",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, recorder.events, 2)
	failed, ok := recorder.events[1].(events.LoginFailed)
	require.True(t, ok)
	require.Equal(t, "ana@example.com", failed.Email)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, recorder := newAuthServiceHarness(t)

	_, err := svc.Login(context.Background(), events.RequestMeta{}, dto.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever1",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, recorder.events, 1)
	failed, ok := recorder.events[0].(events.LoginFailed)
	require.True(t, ok)
	require.Equal(t, "ghost@example.com", failed.Email)
}

func TestAuthServiceLogoutPublishes(t *testing.T) {
	svc, recorder := newAuthServiceHarness(t)

	svc.Logout(context.Background(), events.RequestMeta{}, events.Actor{ID: 3, Name: "Ana"})

	require.Len(t, recorder.events, 1)
	logout, ok := recorder.events[0].(events.LoggedOut)
	require.True(t, ok)
	require.Equal(t, uint(3), logout.Actor.ID)
	require.Equal(t, GuardName, logout.Guard)
}
