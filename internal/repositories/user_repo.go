package repositories

import (
	"context"
	"errors"

	"github.com/BradenHooton/conecta/internal/models"
)

// UserRepository reads and rewrites the whole user directory.
type UserRepository struct {
	tx Tx
}

func NewUserRepository(tx Tx) *UserRepository {
	return &UserRepository{tx: tx}
}

// List returns every directory record, or an empty slice when none exist.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	return loadList[models.User](ctx, r.tx, models.KeyUsers)
}

func (r *UserRepository) Save(ctx context.Context, users []models.User) error {
	return PutJSON(ctx, r.tx, models.KeyUsers, users)
}

// IndexByEmail returns the position of email in users, or -1. Emails are
// compared case-sensitively.
func IndexByEmail(users []models.User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}

// SessionRepository holds the single current-user record.
type SessionRepository struct {
	tx Tx
}

func NewSessionRepository(tx Tx) *SessionRepository {
	return &SessionRepository{tx: tx}
}

// Get returns models.ErrNoSession when nobody is logged in.
func (r *SessionRepository) Get(ctx context.Context) (*models.User, error) {
	var user models.User
	found, err := GetJSON(ctx, r.tx, models.KeySession, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNoSession
	}
	return &user, nil
}

func (r *SessionRepository) Set(ctx context.Context, user *models.User) error {
	return PutJSON(ctx, r.tx, models.KeySession, user)
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	return r.tx.Delete(ctx, models.KeySession)
}

// SyncWith rewrites the session when it belongs to email. A nil user clears
// it. It reports whether the session was touched.
func (r *SessionRepository) SyncWith(ctx context.Context, email string, user *models.User) (bool, error) {
	current, err := r.Get(ctx)
	if errors.Is(err, models.ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if current.Email != email {
		return false, nil
	}

	if user == nil {
		return true, r.Clear(ctx)
	}
	return true, r.Set(ctx, user)
}

// DeletionNoticeRepository holds the read-once account deletion message.
type DeletionNoticeRepository struct {
	tx Tx
}

func NewDeletionNoticeRepository(tx Tx) *DeletionNoticeRepository {
	return &DeletionNoticeRepository{tx: tx}
}

func (r *DeletionNoticeRepository) Set(ctx context.Context, message string) error {
	return PutJSON(ctx, r.tx, models.KeyDeletionNotice, message)
}

// Take returns the stored notice and removes it. found is false when there
// is none.
func (r *DeletionNoticeRepository) Take(ctx context.Context) (message string, found bool, err error) {
	found, err = GetJSON(ctx, r.tx, models.KeyDeletionNotice, &message)
	if err != nil || !found {
		return "", false, err
	}
	if err := r.tx.Delete(ctx, models.KeyDeletionNotice); err != nil {
		return "", false, err
	}
	return message, true, nil
}
