package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/admin-audit-api/internal/dto"
	"github.com/noah-isme/admin-audit-api/internal/events"
	"github.com/noah-isme/admin-audit-api/internal/models"
	"github.com/noah-isme/admin-audit-api/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ActivityRecord{}))
	return db
}

type lifecycleRecorder struct {
	events []events.UserLifecycle
}

func (r *lifecycleRecorder) handle(_ context.Context, event events.Event) {
	if lifecycle, ok := event.(events.UserLifecycle); ok {
		r.events = append(r.events, lifecycle)
	}
}

func newUserServiceHarness(t *testing.T) (UserService, repository.UserRepository, *lifecycleRecorder) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewUserRepository(db)

	dispatcher := events.NewDispatcher(zerolog.Nop())
	recorder := &lifecycleRecorder{}
	for _, topic := range []string{
		events.TopicUserCreated,
		events.TopicUserUpdated,
		events.TopicUserDeleted,
		events.TopicUserRestored,
		events.TopicUserForceDeleted,
	} {
		dispatcher.Subscribe(topic, recorder.handle)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewUserService(repo, dispatcher, validate, zerolog.Nop()), repo, recorder
}

func TestUserServiceCreatePublishesLifecycleEvent(t *testing.T) {
	svc, _, recorder := newUserServiceHarness(t)
	ctx := context.Background()
	actor := &events.Actor{ID: 1, Name: "Root"}

	created, err := svc.Create(ctx, ActionContext{Actor: actor}, dto.UserCreateRequest{
		Name:     "Ana",
		Email:    "Ana@Example.com",
		Password: "sup3rsecret",
		Gender:   "feminine",
	})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", created.Email)
	require.Equal(t, "user", created.Role)

	require.Len(t, recorder.events, 1)
	event := recorder.events[0]
	require.Equal(t, models.ActivityEventCreated, event.Kind)
	require.Equal(t, actor, event.Actor)
	require.Equal(t, "Ana", event.Attributes["name"])
	require.NotContains(t, event.Attributes, "password")
}

func TestUserServiceCreateRejectsInvalidPayload(t *testing.T) {
	svc, _, recorder := newUserServiceHarness(t)

	_, err := svc.Create(context.Background(), ActionContext{}, dto.UserCreateRequest{
		Name:     "Ana",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	require.Empty(t, recorder.events)
}

func TestUserServiceUpdateDiffsChangedFields(t *testing.T) {
	svc, _, recorder := newUserServiceHarness(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ActionContext{}, dto.UserCreateRequest{
		Name:     "Anna",
		Email:    "anna@example.com",
		Password: "sup3rsecret",
		Gender:   "feminine",
	})
	require.NoError(t, err)

	name := "Ana"
	updated, err := svc.Update(ctx, ActionContext{}, created.ID, dto.UserUpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Ana", updated.Name)

	require.Len(t, recorder.events, 2)
	event := recorder.events[1]
	require.Equal(t, models.ActivityEventUpdated, event.Kind)
	require.Equal(t, []string{"name"}, event.ChangedFields)
	require.Equal(t, map[string]interface{}{"name": "Anna"}, event.OldValues)
}

func TestUserServiceUpdateMasksPasswordInOldValues(t *testing.T) {
	svc, _, recorder := newUserServiceHarness(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ActionContext{}, dto.UserCreateRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	password := "ev3nmoresecret"
	_, err = svc.Update(ctx, ActionContext{}, created.ID, dto.UserUpdateRequest{Password: &password})
	require.NoError(t, err)

	require.Len(t, recorder.events, 2)
	event := recorder.events[1]
	require.Contains(t, event.ChangedFields, "password")
	require.Equal(t, "***", event.OldValues["password"])
}

func TestUserServiceUpdateWithoutChangesPublishesNothing(t *testing.T) {
	svc, _, recorder := newUserServiceHarness(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ActionContext{}, dto.UserCreateRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	same := "Ana"
	_, err = svc.Update(ctx, ActionContext{}, created.ID, dto.UserUpdateRequest{Name: &same})
	require.NoError(t, err)

	require.Len(t, recorder.events, 1) // only the create
}

func TestUserServiceDeleteRestoreForceDelete(t *testing.T) {
	svc, repo, recorder := newUserServiceHarness(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ActionContext{}, dto.UserCreateRequest{
		Name:     "Luis",
		Email:    "luis@example.com",
		Password: "sup3rsecret",
		Gender:   "masculine",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ActionContext{}, created.ID))
	deleted, err := repo.GetByIDIncludingDeleted(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted.DeletedAt.Valid)

	restored, err := svc.Restore(ctx, ActionContext{}, created.ID)
	require.NoError(t, err)
	require.Nil(t, restored.DeletedAt)

	require.NoError(t, svc.ForceDelete(ctx, ActionContext{}, created.ID))
	_, err = repo.GetByIDIncludingDeleted(ctx, created.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	kinds := make([]string, 0, len(recorder.events))
	for _, event := range recorder.events {
		kinds = append(kinds, event.Kind)
	}
	require.Equal(t, []string{
		models.ActivityEventCreated,
		models.ActivityEventDeleted,
		models.ActivityEventRestored,
		models.ActivityEventForceDeleted,
	}, kinds)
}

func TestUserServiceRestoreWithoutDeletionFails(t *testing.T) {
	svc, _, _ := newUserServiceHarness(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ActionContext{}, dto.UserCreateRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	_, err = svc.Restore(ctx, ActionContext{}, created.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	svc, repo, _ := newUserServiceHarness(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, ActionContext{}, dto.UserCreateRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotEqual(t, "sup3rsecret", stored.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("sup3rsecret")))
}
