package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admin-audit-api/internal/device"
	"github.com/noah-isme/admin-audit-api/internal/middleware"
	"github.com/noah-isme/admin-audit-api/internal/models"
	"github.com/noah-isme/admin-audit-api/internal/repository"
	"github.com/noah-isme/admin-audit-api/internal/service"
)

type recordingRepo struct {
	mu      sync.Mutex
	records []models.ActivityRecord
}

func (r *recordingRepo) Create(_ context.Context, record *models.ActivityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = uint(len(r.records) + 1)
	r.records = append(r.records, *record)
	return nil
}

func (r *recordingRepo) FindByID(context.Context, uint) (models.ActivityRecord, error) {
	return models.ActivityRecord{}, errors.New("not implemented")
}

func (r *recordingRepo) List(context.Context, repository.ActivityFilter) ([]models.ActivityRecord, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (r *recordingRepo) DeleteByIDs(context.Context, []uint) (int64, error) {
	return 0, errors.New("not implemented")
}

func (r *recordingRepo) all() []models.ActivityRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ActivityRecord(nil), r.records...)
}

func newTrackedApp(t *testing.T, authenticated bool) (*fiber.App, *recordingRepo) {
	t.Helper()
	repo := &recordingRepo{}

	classify := func(userAgent string) device.Profile {
		return device.Profile{UserAgent: userAgent, DeviceName: "Desktop"}
	}
	devices := service.NewDeviceDetailService(nil, time.Hour, classify, zerolog.Nop())
	throttle := service.NewAccessThrottle(nil, 5*time.Minute, zerolog.Nop())
	recorder := service.NewActivityLogger(repo, devices, throttle, nil, zerolog.Nop())

	app := fiber.New()
	if authenticated {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(42))
			c.Locals("user_name", "Ana")
			return c.Next()
		})
	}
	app.Use(middleware.TrackAccess(recorder, zerolog.Nop()))
	app.Get("/api/admin/users", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/assets/app.css", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/v1/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, repo
}

func performGet(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestTrackAccessRecordsTrackedPaths(t *testing.T) {
	app, repo := newTrackedApp(t, false)

	resp := performGet(t, app, "/api/admin/users")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	records := repo.all()
	require.Len(t, records, 1)

	record := records[0]
	require.Equal(t, models.ActivityCategoryAccess, record.Category)
	require.Nil(t, record.ActorID)
	require.Equal(t, models.VisitorTypeAnonymous, record.Properties["visitor_type"])
	require.Equal(t, "/api/admin/users", record.Properties["path"])
	require.Equal(t, fiber.StatusOK, record.Properties["status_code"])
}

func TestTrackAccessSkipsExcludedPaths(t *testing.T) {
	app, repo := newTrackedApp(t, false)

	performGet(t, app, "/assets/app.css")
	performGet(t, app, "/api/v1/health")

	require.Empty(t, repo.all())
}

func TestTrackAccessAttachesActor(t *testing.T) {
	app, repo := newTrackedApp(t, true)

	performGet(t, app, "/api/admin/users")

	records := repo.all()
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ActorID)
	require.Equal(t, uint(42), *records[0].ActorID)
	require.Equal(t, models.VisitorTypeAuthenticated, records[0].Properties["visitor_type"])
}
