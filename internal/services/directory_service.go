package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/repositories"
	pkgauth "github.com/BradenHooton/conecta/pkg/auth"
	"github.com/BradenHooton/conecta/pkg/logger"
)

// DirectoryConfig holds the auth constants of the user directory.
type DirectoryConfig struct {
	VerificationCode    string
	InstitutionalDomain string
	BcryptCost          int
}

// DirectoryService owns the user directory and the current session.
// Every operation that touches both runs in one store transaction.
type DirectoryService struct {
	store  repositories.Store
	sender CodeSender
	audit  *logger.AuditLogger
	cfg    DirectoryConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(store repositories.Store, sender CodeSender, audit *logger.AuditLogger, cfg DirectoryConfig, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		store:  store,
		sender: sender,
		audit:  audit,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Register adds an unverified user and asks the CodeSender to deliver the
// verification code. A delivery failure is logged only.
func (s *DirectoryService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name == "":
		return nil, models.NewValidationError("name", "this field is required")
	case email == "":
		return nil, models.NewValidationError("email", "this field is required")
	case strings.TrimSpace(password) == "":
		return nil, models.NewValidationError("password", "this field is required")
	}

	if !models.HasInstitutionalEmail(email, s.cfg.InstitutionalDomain) {
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "register", Email: email, FailureReason: "invalid_domain"})
		return nil, models.ErrInvalidDomain
	}

	hash, err := pkgauth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, models.NewValidationError("password", err.Error())
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	err = s.store.WithTx(ctx, func(tx repositories.Tx) error {
		repo := repositories.NewUserRepository(tx)
		users, err := repo.List(ctx)
		if err != nil {
			return err
		}
		if repositories.IndexByEmail(users, email) >= 0 {
			return models.ErrDuplicateEmail
		}
		return repo.Save(ctx, append(users, user))
	})
	if err != nil {
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "register", Email: email, FailureReason: reason(err)})
		return nil, storeFailure(s.logger, "failed to register user", err)
	}

	if err := s.sender.SendVerificationCode(ctx, email, name, s.cfg.VerificationCode); err != nil {
		s.logger.Warn("verification code not delivered",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.Any("error", err),
		)
	}

	s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "register", Email: email, Success: true})
	return &user, nil
}

// Verify marks email as verified when code matches and opens a session for it.
func (s *DirectoryService) Verify(ctx context.Context, email, code string) (*models.User, error) {
	email = strings.TrimSpace(email)

	if !pkgauth.CompareCode(s.cfg.VerificationCode, strings.TrimSpace(code)) {
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "verify", Email: email, FailureReason: "invalid_code"})
		return nil, models.ErrInvalidCode
	}

	var verified models.User
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		if err := tx.Lock(ctx, models.KeyUsers, models.KeySession); err != nil {
			return err
		}
		repo := repositories.NewUserRepository(tx)
		users, err := repo.List(ctx)
		if err != nil {
			return err
		}
		i := repositories.IndexByEmail(users, email)
		if i < 0 {
			return models.ErrNotFound
		}
		users[i].Verified = true
		if err := repo.Save(ctx, users); err != nil {
			return err
		}
		verified = users[i]
		return repositories.NewSessionRepository(tx).Set(ctx, &verified)
	})
	if err != nil {
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "verify", Email: email, FailureReason: reason(err)})
		return nil, storeFailure(s.logger, "failed to verify user", err)
	}

	s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "verify", Email: email, Success: true})
	return &verified, nil
}

// Login checks the credentials of email and writes the matched record as the
// new session.
func (s *DirectoryService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)

	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "login", Email: email, FailureReason: reason(err)})
		return nil, err
	}

	// The password check runs outside the transaction; re-read the record so
	// the session mirrors what is stored now.
	err = s.store.WithTx(ctx, func(tx repositories.Tx) error {
		if err := tx.Lock(ctx, models.KeyUsers, models.KeySession); err != nil {
			return err
		}
		users, err := repositories.NewUserRepository(tx).List(ctx)
		if err != nil {
			return err
		}
		i := repositories.IndexByEmail(users, email)
		if i < 0 {
			return models.ErrInvalidCredentials
		}
		*user = users[i]
		return repositories.NewSessionRepository(tx).Set(ctx, user)
	})
	if err != nil {
		s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "login", Email: email, FailureReason: reason(err)})
		return nil, storeFailure(s.logger, "failed to open session", err)
	}

	s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "login", Email: email, Success: true})
	return user, nil
}

func (s *DirectoryService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if !models.HasInstitutionalEmail(email, s.cfg.InstitutionalDomain) {
		return nil, models.ErrInvalidDomain
	}

	users, err := repositories.NewUserRepository(s.store).List(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to load users", err)
	}

	i := repositories.IndexByEmail(users, email)
	if i < 0 || users[i].Deleted {
		pkgauth.CompareDummy(password)
		return nil, models.ErrInvalidCredentials
	}
	user := users[i]

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	if !user.Verified {
		return nil, models.ErrNotVerified
	}
	if user.IsCurrentlyBlocked(s.now()) {
		return nil, models.ErrAccountBlocked
	}
	return &user, nil
}

// Logout clears the session.
func (s *DirectoryService) Logout(ctx context.Context, email string) error {
	if err := repositories.NewSessionRepository(s.store).Clear(ctx); err != nil {
		return storeFailure(s.logger, "failed to clear session", err)
	}
	s.audit.LogAuthAttempt(ctx, logger.AuditEvent{EventType: "logout", Email: email, Success: true})
	return nil
}

// CurrentSession returns the logged-in user or models.ErrNoSession.
func (s *DirectoryService) CurrentSession(ctx context.Context) (*models.User, error) {
	user, err := repositories.NewSessionRepository(s.store).Get(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to load session", err)
	}
	return user, nil
}

// ListUsers returns the students an admin manages: non-admin, non-deleted,
// currently blocked users first, then by name.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := repositories.NewUserRepository(s.store).List(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to load users", err)
	}

	now := s.now()
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsAdmin || u.Deleted {
			continue
		}
		out = append(out, u)
	}

	sort.SliceStable(out, func(i, j int) bool {
		bi, bj := out[i].IsCurrentlyBlocked(now), out[j].IsCurrentlyBlocked(now)
		if bi != bj {
			return bi
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// GetUser returns the directory record of email.
func (s *DirectoryService) GetUser(ctx context.Context, email string) (*models.User, error) {
	users, err := repositories.NewUserRepository(s.store).List(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to load users", err)
	}
	i := repositories.IndexByEmail(users, email)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	return &users[i], nil
}

// SetBlocked blocks email for models.BlockDuration, or lifts the block.
func (s *DirectoryService) SetBlocked(ctx context.Context, actor *models.User, email string, blocked bool) (*models.User, error) {
	now := s.now()
	user, err := s.updateManagedUser(ctx, actor, email, func(u *models.User) {
		u.Blocked = blocked
		if blocked {
			u.BlockedUntil = now.Add(models.BlockDuration).UnixMilli()
		} else {
			u.BlockedUntil = 0
		}
	})
	if err != nil {
		return nil, err
	}

	event := "user_unblocked"
	meta := map[string]string{}
	if blocked {
		event = "user_blocked"
		meta["blocked_until"] = user.BlockedUntilTime().UTC().Format(time.RFC3339)
	}
	s.audit.LogAccountAction(ctx, event, actor.Email, email, meta)
	return user, nil
}

// SetVerified sets the verified flag of email.
func (s *DirectoryService) SetVerified(ctx context.Context, actor *models.User, email string, verified bool) (*models.User, error) {
	user, err := s.updateManagedUser(ctx, actor, email, func(u *models.User) {
		u.Verified = verified
	})
	if err != nil {
		return nil, err
	}

	event := "user_unverified"
	if verified {
		event = "user_verified"
	}
	s.audit.LogAccountAction(ctx, event, actor.Email, email, nil)
	return user, nil
}

// updateManagedUser applies mutate to the directory record of email and to
// the session copy when the session belongs to it.
func (s *DirectoryService) updateManagedUser(ctx context.Context, actor *models.User, email string, mutate func(*models.User)) (*models.User, error) {
	if actor.Email == email {
		return nil, models.ErrForbidden
	}

	var updated models.User
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		if err := tx.Lock(ctx, models.KeyUsers, models.KeySession); err != nil {
			return err
		}
		repo := repositories.NewUserRepository(tx)
		users, err := repo.List(ctx)
		if err != nil {
			return err
		}
		i := repositories.IndexByEmail(users, email)
		if i < 0 {
			return models.ErrNotFound
		}
		if users[i].IsAdmin {
			return models.ErrForbidden
		}

		mutate(&users[i])
		if err := repo.Save(ctx, users); err != nil {
			return err
		}
		updated = users[i]

		_, err = repositories.NewSessionRepository(tx).SyncWith(ctx, email, &updated)
		return err
	})
	if err != nil {
		return nil, storeFailure(s.logger, "failed to update user", err)
	}
	return &updated, nil
}

// DeleteUser removes email from the directory, ends its session if it holds
// one, and leaves the deletion notice for the next launch.
func (s *DirectoryService) DeleteUser(ctx context.Context, actor *models.User, email string) error {
	if actor.Email == email {
		return models.ErrForbidden
	}

	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		if err := tx.Lock(ctx, models.KeyUsers, models.KeySession, models.KeyDeletionNotice); err != nil {
			return err
		}
		repo := repositories.NewUserRepository(tx)
		users, err := repo.List(ctx)
		if err != nil {
			return err
		}
		i := repositories.IndexByEmail(users, email)
		if i < 0 {
			return models.ErrNotFound
		}
		if users[i].IsAdmin {
			return models.ErrForbidden
		}

		users = append(users[:i], users[i+1:]...)
		if err := repo.Save(ctx, users); err != nil {
			return err
		}
		if _, err := repositories.NewSessionRepository(tx).SyncWith(ctx, email, nil); err != nil {
			return err
		}
		return repositories.NewDeletionNoticeRepository(tx).Set(ctx, models.DeletionNoticeMessage)
	})
	if err != nil {
		return storeFailure(s.logger, "failed to delete user", err)
	}

	s.audit.LogAccountAction(ctx, "user_deleted", actor.Email, email, nil)
	return nil
}

// ConsumeDeletionNotice returns the pending deletion notice and removes it.
func (s *DirectoryService) ConsumeDeletionNotice(ctx context.Context) (string, bool, error) {
	var (
		message string
		found   bool
	)
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		var err error
		message, found, err = repositories.NewDeletionNoticeRepository(tx).Take(ctx)
		return err
	})
	if err != nil {
		return "", false, storeFailure(s.logger, "failed to read deletion notice", err)
	}
	return message, found, nil
}

// reason maps an auth failure to a short audit label.
func reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, models.ErrInvalidDomain):
		return "invalid_domain"
	case errors.Is(err, models.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, models.ErrNotVerified):
		return "not_verified"
	case errors.Is(err, models.ErrAccountBlocked):
		return "blocked"
	case errors.Is(err, models.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "internal_error"
	}
}
