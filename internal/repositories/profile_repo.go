package repositories

import (
	"context"

	"github.com/BradenHooton/conecta/internal/models"
)

// ProfileRepository accesses one profile record under a caller-chosen key.
type ProfileRepository struct {
	tx  Tx
	key string
}

func NewProfileRepository(tx Tx, key string) *ProfileRepository {
	return &ProfileRepository{tx: tx, key: key}
}

// Get returns nil when no profile is stored.
func (r *ProfileRepository) Get(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	found, err := GetJSON(ctx, r.tx, r.key, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, p *models.Profile) error {
	return PutJSON(ctx, r.tx, r.key, p)
}

func (r *ProfileRepository) Delete(ctx context.Context) error {
	return r.tx.Delete(ctx, r.key)
}
