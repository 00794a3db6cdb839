package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/config"
	"github.com/BradenHooton/conecta/internal/handlers"
	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/repositories"
	"github.com/BradenHooton/conecta/internal/routes"
	"github.com/BradenHooton/conecta/internal/services"
	pkglogger "github.com/BradenHooton/conecta/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@uniboyaca.edu.co"
	adminPassword = "s3cret-admin"
)

type testServer struct {
	t      *testing.T
	router http.Handler
	store  repositories.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore()

	directory := services.NewDirectoryService(store, services.NewLogCodeSender(logger, "test"), pkglogger.NewAuditLogger(logger), services.DirectoryConfig{
		VerificationCode:    models.DefaultVerificationCode,
		InstitutionalDomain: models.DefaultInstitutionalDomain,
		BcryptCost:          bcrypt.MinCost,
	}, logger)
	notifications := services.NewNotificationService(store, services.DefaultMaxFeed, logger)
	profiles := services.NewProfileService(store, services.ProfileConfig{
		PerUser:             true,
		MaxInterests:        8,
		InstitutionalDomain: models.DefaultInstitutionalDomain,
	}, logger)
	media := services.NewMediaServiceWithPresigner(nil, "", 0, logger)

	seeder := services.NewSeeder(store, notifications, config.SeedConfig{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
		AdminName:     "Administrador",
		DemoData:      true,
	}, bcrypt.MinCost, logger)
	require.NoError(t, seeder.Run(context.Background()))

	tokens := auth.NewTokenManager("routes-test-secret-at-least-32-bytes", time.Hour)
	router := routes.NewRouter(
		routes.Config{Env: "test", AllowedOrigins: []string{"http://localhost:8081"}, AuthRatePerMinute: 1000},
		routes.Handlers{
			Auth:          handlers.NewAuthHandler(directory, tokens, nil, logger),
			Events:        handlers.NewEventHandler(services.NewEventService(store, logger)),
			Notifications: handlers.NewNotificationHandler(notifications),
			Profile:       handlers.NewProfileHandler(profiles, tokens, logger),
			Admin:         handlers.NewAdminHandler(directory),
			Media:         handlers.NewMediaHandler(media),
			Catalog:       handlers.CatalogHandler(8),
			Health:        handlers.HealthHandler(store),
		},
		tokens,
		directory,
		logger,
	)
	return &testServer{t: t, router: router, store: store}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/login", "", handlers.LoginRequest{Email: email, Password: password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp handlers.SessionResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = s.do(http.MethodGet, "/catalog", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/auth/deletion-notice", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRoutes_RegisterVerifyAndJoin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/register", "", handlers.RegisterRequest{
		Name:     "Laura Ruiz",
		Email:    "lruiz@uniboyaca.edu.co",
		Password: "123123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/auth/login", "", handlers.LoginRequest{Email: "lruiz@uniboyaca.edu.co", Password: "123123"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/auth/verify", "", handlers.VerifyRequest{Email: "lruiz@uniboyaca.edu.co", Code: models.DefaultVerificationCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[handlers.SessionResponse](t, w).Token

	w = s.do(http.MethodGet, "/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lruiz@uniboyaca.edu.co", decode[handlers.UserResponse](t, w).Email)

	// Demo event 3 has a single seat.
	w = s.do(http.MethodPost, "/events/3/attendance", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	joined := decode[handlers.AttendanceResponse](t, w)
	assert.True(t, joined.Attending)
	assert.Equal(t, 0, joined.Event.SeatsLeft)

	w = s.do(http.MethodGet, "/events?available=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[handlers.EventListResponse](t, w)
	assert.Equal(t, 2, list.Count)

	w = s.do(http.MethodGet, "/events/dates", token, nil)
	assert.JSONEq(t, `{"dates":["2025-12-01","2025-12-03","2025-12-05"]}`, w.Body.String())
}

func TestRoutes_EventOwnership(t *testing.T) {
	s := newTestServer(t)
	token := s.login(services.DemoStudentEmail, services.DemoStudentPassword)

	fields := models.EventFields{
		Title:       "Club de Lectura",
		Description: "Lectura compartida de cuentos cortos.",
		Datetime:    "2025-12-10T15:00:00Z",
		Place:       "Biblioteca Central",
		Capacity:    10,
		Tags:        []string{"Literatura"},
	}
	w := s.do(http.MethodPost, "/events", token, fields)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[handlers.EventResponse](t, w)
	assert.Equal(t, services.DemoStudentEmail, created.OrganizerID)

	fields.Capacity = 20
	w = s.do(http.MethodPut, "/events/"+created.ID, token, fields)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Demo event 1 belongs to another organizer.
	w = s.do(http.MethodDelete, "/events/1", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/events/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/events/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_NotificationFeed(t *testing.T) {
	s := newTestServer(t)
	token := s.login(services.DemoStudentEmail, services.DemoStudentPassword)

	w := s.do(http.MethodGet, "/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode[handlers.NotificationListResponse](t, w)
	require.NotEmpty(t, feed.Notifications)
	assert.Equal(t, 2, feed.Unread)

	w = s.do(http.MethodPost, "/notifications/"+feed.Notifications[0].ID+"/read", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/notifications/read-all", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/notifications", token, nil)
	assert.Equal(t, 0, decode[handlers.NotificationListResponse](t, w).Unread)

	w = s.do(http.MethodDelete, "/notifications", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/notifications/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_ProfileEmailChangeKeepsSession(t *testing.T) {
	s := newTestServer(t)
	token := s.login(services.DemoStudentEmail, services.DemoStudentPassword)

	w := s.do(http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.DefaultCareer, decode[models.Profile](t, w).Career)

	w = s.do(http.MethodPut, "/profile", token, models.ProfileFields{
		Name:              "David Santiago Amaya",
		Email:             "david.amaya@uniboyaca.edu.co",
		Career:            "Ingeniería de Sistemas",
		Semester:          "5º Semestre",
		SelectedInterests: []string{"Música", "Tecnología"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[handlers.SaveProfileResponse](t, w)
	require.NotNil(t, saved.Session)

	// The old token names an email the session no longer holds.
	w = s.do(http.MethodGet, "/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/auth/session", saved.Session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "David Santiago Amaya", decode[handlers.UserResponse](t, w).Name)
}

func TestRoutes_AdminOnly(t *testing.T) {
	s := newTestServer(t)

	student := s.login(services.DemoStudentEmail, services.DemoStudentPassword)
	w := s.do(http.MethodGet, "/admin/users", student, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := s.login(adminEmail, adminPassword)
	w = s.do(http.MethodGet, "/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[handlers.UserListResponse](t, w)
	require.Equal(t, 1, users.Count)
	assert.Equal(t, services.DemoStudentEmail, users.Users[0].Email)

	w = s.do(http.MethodPut, "/admin/users/"+services.DemoStudentEmail+"/blocked", admin, map[string]bool{"blocked": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[handlers.UserResponse](t, w).CurrentlyBlocked)

	w = s.do(http.MethodPost, "/auth/login", "", handlers.LoginRequest{Email: services.DemoStudentEmail, Password: services.DemoStudentPassword})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin = s.login(adminEmail, adminPassword)
	w = s.do(http.MethodDelete, "/admin/users/"+services.DemoStudentEmail, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/admin/users/"+adminEmail, admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoutes_AdminEncodedEmailPath(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, adminPassword)
	encoded := "/admin/users/dsamaya%40uniboyaca.edu.co"

	w := s.do(http.MethodGet, encoded, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, services.DemoStudentEmail, decode[handlers.UserResponse](t, w).Email)

	w = s.do(http.MethodPut, encoded+"/verified", admin, map[string]bool{"verified": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decode[handlers.UserResponse](t, w).Verified)

	w = s.do(http.MethodDelete, encoded, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, encoded, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_LogoutEndsSession(t *testing.T) {
	s := newTestServer(t)
	token := s.login(services.DemoStudentEmail, services.DemoStudentPassword)

	w := s.do(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/events", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_MediaDisabled(t *testing.T) {
	s := newTestServer(t)
	token := s.login(services.DemoStudentEmail, services.DemoStudentPassword)

	w := s.do(http.MethodPost, "/media/uploads", token, handlers.PresignUploadRequest{Kind: "event"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/events", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:8081", w.Header().Get("Access-Control-Allow-Origin"))
}
