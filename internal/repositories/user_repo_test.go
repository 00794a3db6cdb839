package repositories

import (
	"context"
	"testing"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_EmptyDirectory(t *testing.T) {
	users, err := NewUserRepository(NewMemoryStore()).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserRepository_SaveAndList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	repo := NewUserRepository(store)

	in := []models.User{
		{Name: "Ana", Email: "ana@uniboyaca.edu.co", PasswordHash: "h"},
		{Name: "Beto", Email: "beto@uniboyaca.edu.co", Verified: true},
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 1, IndexByEmail(out, "beto@uniboyaca.edu.co"))
	assert.Equal(t, -1, IndexByEmail(out, "BETO@uniboyaca.edu.co"))
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	repo := NewSessionRepository(store)

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, models.ErrNoSession)

	user := &models.User{Name: "Ana", Email: "ana@uniboyaca.edu.co"}
	require.NoError(t, repo.Set(ctx, user))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	// SyncWith ignores other users
	touched, err := repo.SyncWith(ctx, "otro@uniboyaca.edu.co", nil)
	require.NoError(t, err)
	assert.False(t, touched)

	updated := &models.User{Name: "Ana María", Email: "ana@uniboyaca.edu.co"}
	touched, err = repo.SyncWith(ctx, "ana@uniboyaca.edu.co", updated)
	require.NoError(t, err)
	assert.True(t, touched)
	got, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.Name)

	touched, err = repo.SyncWith(ctx, "ana@uniboyaca.edu.co", nil)
	require.NoError(t, err)
	assert.True(t, touched)
	_, err = repo.Get(ctx)
	assert.ErrorIs(t, err, models.ErrNoSession)
}

func TestDeletionNoticeRepository_ReadOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	repo := NewDeletionNoticeRepository(store)

	_, found, err := repo.Take(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, models.DeletionNoticeMessage))

	msg, found, err := repo.Take(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.DeletionNoticeMessage, msg)

	_, found, err = repo.Take(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProfileRepository_KeyedStorage(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	a := NewProfileRepository(store, models.KeyProfile+":a@uniboyaca.edu.co")
	b := NewProfileRepository(store, models.KeyProfile+":b@uniboyaca.edu.co")

	require.NoError(t, a.Save(ctx, &models.Profile{Name: "A"}))

	got, err := b.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = a.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Name)

	require.NoError(t, a.Delete(ctx))
	got, err = a.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
