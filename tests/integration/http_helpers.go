//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BradenHooton/conecta/internal/auth"
	"github.com/BradenHooton/conecta/internal/config"
	"github.com/BradenHooton/conecta/internal/handlers"
	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/repositories"
	"github.com/BradenHooton/conecta/internal/routes"
	"github.com/BradenHooton/conecta/internal/services"
	pkglogger "github.com/BradenHooton/conecta/pkg/logger"
)

// SentCode represents a captured verification code message
type SentCode struct {
	To   string
	Name string
	Code string
}

// MockCodeSender captures sent verification codes for test assertions
type MockCodeSender struct {
	Sent []SentCode
	mu   sync.Mutex
}

// SendVerificationCode records the code
func (m *MockCodeSender) SendVerificationCode(ctx context.Context, email, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentCode{To: email, Name: name, Code: code})
	return nil
}

// GetLastCode returns the most recent code sent
func (m *MockCodeSender) GetLastCode() *SentCode {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}

// TestServer wraps httptest.Server with the store and all dependencies
type TestServer struct {
	Server        *httptest.Server
	Store         repositories.Store
	CodeSender    *MockCodeSender
	Notifications *services.NotificationService
}

// NewTestServer initializes a complete HTTP server over store with a mocked code sender
func NewTestServer(store repositories.Store) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	sender := &MockCodeSender{}
	tokenManager := auth.NewTokenManager("test-secret-32-characters-long-for-testing", time.Hour)

	directory := services.NewDirectoryService(store, sender, pkglogger.NewAuditLogger(logger), services.DirectoryConfig{
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

	router := routes.NewRouter(
		routes.Config{Env: "test", AuthRatePerMinute: 1000, SessionRatePerMinute: 10000},
		routes.Handlers{
			Auth:          handlers.NewAuthHandler(directory, tokenManager, nil, logger),
			Events:        handlers.NewEventHandler(services.NewEventService(store, logger)),
			Notifications: handlers.NewNotificationHandler(notifications),
			Profile:       handlers.NewProfileHandler(profiles, tokenManager, logger),
			Admin:         handlers.NewAdminHandler(directory),
			Media:         handlers.NewMediaHandler(media),
			Catalog:       handlers.CatalogHandler(8),
			Health:        handlers.HealthHandler(store),
		},
		tokenManager,
		directory,
		logger,
	)

	return &TestServer{
		Server:        httptest.NewServer(router),
		Store:         store,
		CodeSender:    sender,
		Notifications: notifications,
	}
}

// Seed runs the seeder with cfg against the server's store.
func (ts *TestServer) Seed(ctx context.Context, cfg config.SeedConfig) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return services.NewSeeder(ts.Store, ts.Notifications, cfg, bcrypt.MinCost, logger).Run(ctx)
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// Do sends a JSON request with an optional bearer token
func (ts *TestServer) Do(method, path, token string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.Server.Client().Do(req)
}

// DecodeResponse decodes a JSON response body into target and closes it
func DecodeResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
