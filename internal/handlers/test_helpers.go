package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/services"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionUser puts user in the request context the way AuthMiddleware does
func WithSessionUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

// WithURLParams attaches chi route parameters to the request
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc              func(ctx context.Context, name, email, password string) (*models.User, error)
	VerifyFunc                func(ctx context.Context, email, code string) (*models.User, error)
	LoginFunc                 func(ctx context.Context, email, password string) (*models.User, error)
	LogoutFunc                func(ctx context.Context, email string) error
	ConsumeDeletionNoticeFunc func(ctx context.Context) (string, bool, error)
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrDuplicateEmail
	}
	return m.RegisterFunc(ctx, name, email, password)
}

func (m *MockAuthService) Verify(ctx context.Context, email, code string) (*models.User, error) {
	if m.VerifyFunc == nil {
		return nil, models.ErrInvalidCode
	}
	return m.VerifyFunc(ctx, email, code)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, email, password)
}

func (m *MockAuthService) Logout(ctx context.Context, email string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, email)
}

func (m *MockAuthService) ConsumeDeletionNotice(ctx context.Context) (string, bool, error) {
	if m.ConsumeDeletionNoticeFunc == nil {
		return "", false, nil
	}
	return m.ConsumeDeletionNoticeFunc(ctx)
}

// MockEventService implements EventServiceInterface for testing
type MockEventService struct {
	ListEventsFunc       func(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	ListEventDatesFunc   func(ctx context.Context) ([]string, error)
	GetEventFunc         func(ctx context.Context, id string) (*models.Event, error)
	CreateEventFunc      func(ctx context.Context, caller *models.User, fields models.EventFields) (*models.Event, error)
	UpdateEventFunc      func(ctx context.Context, caller *models.User, id string, fields models.EventFields) (*models.Event, error)
	DeleteEventFunc      func(ctx context.Context, caller *models.User, id string) error
	ToggleAttendanceFunc func(ctx context.Context, caller *models.User, id string) (*models.Event, bool, error)
}

func (m *MockEventService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	if m.ListEventsFunc == nil {
		return []models.Event{}, nil
	}
	return m.ListEventsFunc(ctx, filter)
}

func (m *MockEventService) ListEventDates(ctx context.Context) ([]string, error) {
	if m.ListEventDatesFunc == nil {
		return []string{}, nil
	}
	return m.ListEventDatesFunc(ctx)
}

func (m *MockEventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if m.GetEventFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetEventFunc(ctx, id)
}

func (m *MockEventService) CreateEvent(ctx context.Context, caller *models.User, fields models.EventFields) (*models.Event, error) {
	if m.CreateEventFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateEventFunc(ctx, caller, fields)
}

func (m *MockEventService) UpdateEvent(ctx context.Context, caller *models.User, id string, fields models.EventFields) (*models.Event, error) {
	if m.UpdateEventFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateEventFunc(ctx, caller, id, fields)
}

func (m *MockEventService) DeleteEvent(ctx context.Context, caller *models.User, id string) error {
	if m.DeleteEventFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteEventFunc(ctx, caller, id)
}

func (m *MockEventService) ToggleAttendance(ctx context.Context, caller *models.User, id string) (*models.Event, bool, error) {
	if m.ToggleAttendanceFunc == nil {
		return nil, false, models.ErrNotFound
	}
	return m.ToggleAttendanceFunc(ctx, caller, id)
}

// MockNotificationService implements NotificationServiceInterface for testing
type MockNotificationService struct {
	ListFunc        func(ctx context.Context) ([]models.Notification, error)
	MarkReadFunc    func(ctx context.Context, id string) error
	DeleteOneFunc   func(ctx context.Context, id string) error
	MarkAllReadFunc func(ctx context.Context) error
	DeleteAllFunc   func(ctx context.Context) error
}

func (m *MockNotificationService) List(ctx context.Context) ([]models.Notification, error) {
	if m.ListFunc == nil {
		return []models.Notification{}, nil
	}
	return m.ListFunc(ctx)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id string) error {
	if m.MarkReadFunc == nil {
		return nil
	}
	return m.MarkReadFunc(ctx, id)
}

func (m *MockNotificationService) DeleteOne(ctx context.Context, id string) error {
	if m.DeleteOneFunc == nil {
		return nil
	}
	return m.DeleteOneFunc(ctx, id)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context) error {
	if m.MarkAllReadFunc == nil {
		return nil
	}
	return m.MarkAllReadFunc(ctx)
}

func (m *MockNotificationService) DeleteAll(ctx context.Context) error {
	if m.DeleteAllFunc == nil {
		return nil
	}
	return m.DeleteAllFunc(ctx)
}

// MockProfileService implements ProfileServiceInterface for testing
type MockProfileService struct {
	LoadProfileFunc func(ctx context.Context) (*models.Profile, error)
	SaveProfileFunc func(ctx context.Context, fields models.ProfileFields) (*models.Profile, *models.User, error)
}

func (m *MockProfileService) LoadProfile(ctx context.Context) (*models.Profile, error) {
	if m.LoadProfileFunc == nil {
		return nil, models.ErrNoSession
	}
	return m.LoadProfileFunc(ctx)
}

func (m *MockProfileService) SaveProfile(ctx context.Context, fields models.ProfileFields) (*models.Profile, *models.User, error) {
	if m.SaveProfileFunc == nil {
		return nil, nil, models.ErrNoSession
	}
	return m.SaveProfileFunc(ctx, fields)
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	ListUsersFunc   func(ctx context.Context) ([]models.User, error)
	GetUserFunc     func(ctx context.Context, email string) (*models.User, error)
	SetBlockedFunc  func(ctx context.Context, actor *models.User, email string, blocked bool) (*models.User, error)
	SetVerifiedFunc func(ctx context.Context, actor *models.User, email string, verified bool) (*models.User, error)
	DeleteUserFunc  func(ctx context.Context, actor *models.User, email string) error
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.ListUsersFunc == nil {
		return []models.User{}, nil
	}
	return m.ListUsersFunc(ctx)
}

func (m *MockAdminService) GetUser(ctx context.Context, email string) (*models.User, error) {
	if m.GetUserFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetUserFunc(ctx, email)
}

func (m *MockAdminService) SetBlocked(ctx context.Context, actor *models.User, email string, blocked bool) (*models.User, error) {
	if m.SetBlockedFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SetBlockedFunc(ctx, actor, email, blocked)
}

func (m *MockAdminService) SetVerified(ctx context.Context, actor *models.User, email string, verified bool) (*models.User, error) {
	if m.SetVerifiedFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SetVerifiedFunc(ctx, actor, email, verified)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, actor *models.User, email string) error {
	if m.DeleteUserFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteUserFunc(ctx, actor, email)
}

// MockMediaService implements MediaServiceInterface for testing
type MockMediaService struct {
	PresignUploadFunc func(ctx context.Context, kind string) (*services.Upload, error)
}

func (m *MockMediaService) PresignUpload(ctx context.Context, kind string) (*services.Upload, error) {
	if m.PresignUploadFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.PresignUploadFunc(ctx, kind)
}
