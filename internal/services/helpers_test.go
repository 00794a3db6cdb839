package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/repositories"
	pkgauth "github.com/BradenHooton/conecta/pkg/auth"
	"github.com/BradenHooton/conecta/pkg/logger"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testDomain   = "@uniboyaca.edu.co"
	testCode     = "789456"
	testPassword = "123123"
)

// testNow is the fixed clock used by service tests.
var testNow = time.Date(2025, 11, 20, 15, 0, 0, 0, time.UTC)

var errStoreDown = errors.New("store unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockCodeSender implements CodeSender for testing
type MockCodeSender struct {
	SendVerificationCodeFunc func(ctx context.Context, email, name, code string) error
}

func (m *MockCodeSender) SendVerificationCode(ctx context.Context, email, name, code string) error {
	if m.SendVerificationCodeFunc != nil {
		return m.SendVerificationCodeFunc(ctx, email, name, code)
	}
	return nil
}

// MockStore implements repositories.Store for testing failure paths. Unset
// funcs delegate to an in-memory store.
type MockStore struct {
	repositories.Store
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	WithTxFunc func(ctx context.Context, fn func(repositories.Tx) error) error
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return m.Store.Get(ctx, key)
}

func (m *MockStore) WithTx(ctx context.Context, fn func(repositories.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, fn)
	}
	return m.Store.WithTx(ctx, fn)
}

// newFailingStore returns a store whose every read and transaction fails.
func newFailingStore() *MockStore {
	return &MockStore{
		Store: repositories.NewMemoryStore(),
		GetFunc: func(ctx context.Context, key string) ([]byte, error) {
			return nil, errStoreDown
		},
		WithTxFunc: func(ctx context.Context, fn func(repositories.Tx) error) error {
			return errStoreDown
		},
	}
}

func newTestDirectory(store repositories.Store, sender CodeSender) *DirectoryService {
	if sender == nil {
		sender = &MockCodeSender{}
	}
	svc := NewDirectoryService(store, sender, logger.NewAuditLogger(discardLogger()), DirectoryConfig{
		VerificationCode:    testCode,
		InstitutionalDomain: testDomain,
		BcryptCost:          bcrypt.MinCost,
	}, discardLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

// NewTestUser builds a verified student whose password is testPassword.
func NewTestUser(t *testing.T, name, email string) models.User {
	t.Helper()
	hash, err := pkgauth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	return models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Verified:     true,
	}
}

// NewTestAdmin builds a verified administrator.
func NewTestAdmin(t *testing.T) models.User {
	admin := NewTestUser(t, "Administrador", "admin"+testDomain)
	admin.IsAdmin = true
	return admin
}

func seedUsers(t *testing.T, store repositories.Store, users ...models.User) {
	t.Helper()
	require.NoError(t, repositories.NewUserRepository(store).Save(context.Background(), users))
}

func setSession(t *testing.T, store repositories.Store, user models.User) {
	t.Helper()
	require.NoError(t, repositories.NewSessionRepository(store).Set(context.Background(), &user))
}

func storedUsers(t *testing.T, store repositories.Store) []models.User {
	t.Helper()
	users, err := repositories.NewUserRepository(store).List(context.Background())
	require.NoError(t, err)
	return users
}

func storedSession(t *testing.T, store repositories.Store) *models.User {
	t.Helper()
	user, err := repositories.NewSessionRepository(store).Get(context.Background())
	if errors.Is(err, models.ErrNoSession) {
		return nil
	}
	require.NoError(t, err)
	return user
}
