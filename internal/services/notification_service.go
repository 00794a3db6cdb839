package services

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/repositories"
	"github.com/google/uuid"
)

// DefaultMaxFeed bounds the feed when no limit is configured.
const DefaultMaxFeed = 100

// notificationMessages are the message pools drawn from by Generate.
var notificationMessages = map[models.NotificationType][]string{
	models.NotificationConfirmation: {
		"Tu asistencia al evento ha sido confirmada.",
		"¡Listo! Quedaste inscrito en el evento.",
		"Confirmamos tu cupo. Te esperamos.",
		"Tu registro al evento fue exitoso.",
	},
	models.NotificationReminder: {
		"Recuerda: tu evento comienza en una hora.",
		"No olvides el evento de mañana.",
		"Tu evento empieza pronto, ¡no llegues tarde!",
		"Recordatorio: revisa el lugar de tu próximo evento.",
	},
	models.NotificationInvitation: {
		"Te invitamos a un nuevo taller en el campus.",
		"Hay un evento nuevo que coincide con tus intereses.",
		"Un compañero te invitó a un evento.",
		"¡Únete a la próxima charla de tu facultad!",
	},
	models.NotificationAnnouncement: {
		"Se publicaron nuevos eventos esta semana.",
		"La Biblioteca Central amplía su horario de atención.",
		"Actualizamos la agenda cultural de la universidad.",
		"Consulta las novedades del campus en Conecta UdB.",
	},
}

// sampleNotifications seed an empty feed with one entry per type.
var sampleNotifications = []struct {
	message string
	kind    models.NotificationType
	age     time.Duration
	read    bool
}{
	{"Tu asistencia a \"Charla sobre Animación\" fue confirmada.", models.NotificationConfirmation, 10 * time.Minute, false},
	{"Recuerda: \"Taller de Programación\" es mañana en el Salón 101.", models.NotificationReminder, 2 * time.Hour, false},
	{"Te invitamos a \"Encuentro de Cine y Música\".", models.NotificationInvitation, 26 * time.Hour, true},
	{"Bienvenido a Conecta UdB.", models.NotificationAnnouncement, 72 * time.Hour, true},
}

// NotificationService manages the notification feed.
type NotificationService struct {
	store   repositories.Store
	maxFeed int
	logger  *slog.Logger
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewNotificationService(store repositories.Store, maxFeed int, logger *slog.Logger) *NotificationService {
	if maxFeed <= 0 {
		maxFeed = DefaultMaxFeed
	}
	return &NotificationService{
		store:   store,
		maxFeed: maxFeed,
		logger:  logger,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// List returns the feed, newest first.
func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	items, err := repositories.NewNotificationRepository(s.store).List(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to load notifications", err)
	}
	return items, nil
}

// UnreadCount returns the number of unread entries.
func UnreadCount(items []models.Notification) int {
	n := 0
	for i := range items {
		if !items[i].Read {
			n++
		}
	}
	return n
}

// MarkRead flags entry id as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.update(ctx, "failed to mark notification read", func(items []models.Notification) ([]models.Notification, error) {
		i := notificationIndex(items, id)
		if i < 0 {
			return nil, models.ErrNotFound
		}
		items[i].Read = true
		return items, nil
	})
}

// DeleteOne removes entry id.
func (s *NotificationService) DeleteOne(ctx context.Context, id string) error {
	return s.update(ctx, "failed to delete notification", func(items []models.Notification) ([]models.Notification, error) {
		i := notificationIndex(items, id)
		if i < 0 {
			return nil, models.ErrNotFound
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.update(ctx, "failed to mark notifications read", func(items []models.Notification) ([]models.Notification, error) {
		for i := range items {
			items[i].Read = true
		}
		return items, nil
	})
}

func (s *NotificationService) DeleteAll(ctx context.Context) error {
	return s.update(ctx, "failed to clear notifications", func([]models.Notification) ([]models.Notification, error) {
		return []models.Notification{}, nil
	})
}

// Generate prepends one unread entry with a random type and message and
// trims the feed to its maximum length.
func (s *NotificationService) Generate(ctx context.Context) (*models.Notification, error) {
	kind, message := s.pick()
	n := models.Notification{
		ID:      uuid.NewString(),
		Message: message,
		Date:    s.now().UTC(),
		Read:    false,
		Type:    kind,
	}

	err := s.update(ctx, "failed to generate notification", func(items []models.Notification) ([]models.Notification, error) {
		items = append([]models.Notification{n}, items...)
		if len(items) > s.maxFeed {
			items = items[:s.maxFeed]
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("notification generated", slog.String("type", string(kind)))
	return &n, nil
}

// SeedSamples writes the sample feed when the feed has never been stored.
// It reports whether anything was written.
func (s *NotificationService) SeedSamples(ctx context.Context) (bool, error) {
	seeded := false
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		repo := repositories.NewNotificationRepository(tx)
		ok, err := repo.Initialized(ctx)
		if err != nil || ok {
			return err
		}

		now := s.now().UTC()
		items := make([]models.Notification, 0, len(sampleNotifications))
		for _, sample := range sampleNotifications {
			items = append(items, models.Notification{
				ID:      uuid.NewString(),
				Message: sample.message,
				Date:    now.Add(-sample.age),
				Read:    sample.read,
				Type:    sample.kind,
			})
		}
		seeded = true
		return repo.Save(ctx, items)
	})
	if err != nil {
		return false, storeFailure(s.logger, "failed to seed notifications", err)
	}
	return seeded, nil
}

func (s *NotificationService) pick() (models.NotificationType, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := models.NotificationTypes[s.rng.IntN(len(models.NotificationTypes))]
	pool := notificationMessages[kind]
	return kind, pool[s.rng.IntN(len(pool))]
}

func (s *NotificationService) update(ctx context.Context, msg string, fn func([]models.Notification) ([]models.Notification, error)) error {
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		repo := repositories.NewNotificationRepository(tx)
		items, err := repo.List(ctx)
		if err != nil {
			return err
		}
		items, err = fn(items)
		if err != nil {
			return err
		}
		return repo.Save(ctx, items)
	})
	if err != nil {
		return storeFailure(s.logger, msg, err)
	}
	return nil
}

func notificationIndex(items []models.Notification, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
