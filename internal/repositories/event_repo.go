package repositories

import (
	"context"

	"github.com/BradenHooton/conecta/internal/models"
)

type EventRepository struct {
	tx Tx
}

func NewEventRepository(tx Tx) *EventRepository {
	return &EventRepository{tx: tx}
}

func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	return loadList[models.Event](ctx, r.tx, models.KeyEvents)
}

func (r *EventRepository) Save(ctx context.Context, events []models.Event) error {
	return PutJSON(ctx, r.tx, models.KeyEvents, events)
}

// Initialized reports whether the catalog key has ever been written.
func (r *EventRepository) Initialized(ctx context.Context) (bool, error) {
	return Exists(ctx, r.tx, models.KeyEvents)
}

func EventIndex(events []models.Event, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}
