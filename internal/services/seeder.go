package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/conecta/internal/config"
	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/repositories"
	pkgauth "github.com/BradenHooton/conecta/pkg/auth"
	"github.com/BradenHooton/conecta/pkg/logger"
)

// Demo student created by SEED_DEMO_DATA.
const (
	DemoStudentName     = "David Santiago"
	DemoStudentEmail    = "dsamaya@uniboyaca.edu.co"
	DemoStudentPassword = "123123"
)

// DemoEvents is the catalog written on first start with SEED_DEMO_DATA.
func DemoEvents() []models.Event {
	return []models.Event{
		{
			ID:            "1",
			Title:         "Charla sobre Animación",
			Description:   "Una charla introductoria sobre técnicas de animación 2D y 3D.",
			Datetime:      "2025-12-01T16:00:00.000Z",
			Place:         "Auditorio Principal",
			Capacity:      2,
			Tags:          []string{"Animación", "Arte"},
			OrganizerID:   "juan.perez@uniboyaca.edu.co",
			OrganizerName: "Juan Pérez",
			Attendees:     []models.Attendee{},
		},
		{
			ID:            "2",
			Title:         "Taller de Programación",
			Description:   "Aprende los fundamentos de la programación con ejercicios prácticos.",
			Datetime:      "2025-12-03T18:30:00.000Z",
			Place:         "Salón 101",
			Capacity:      3,
			Tags:          []string{"Tecnología", "Programación"},
			OrganizerID:   "ana.gomez@uniboyaca.edu.co",
			OrganizerName: "Ana Gómez",
			Attendees:     []models.Attendee{},
		},
		{
			ID:            "3",
			Title:         "Encuentro de Cine y Música",
			Description:   "Proyección de cortometrajes acompañada de música en vivo.",
			Datetime:      "2025-12-05T14:00:00.000Z",
			Place:         "Sala de Conferencias",
			Capacity:      1,
			Tags:          []string{"Música", "Cine"},
			OrganizerID:   "luis.martinez@uniboyaca.edu.co",
			OrganizerName: "Luis Martínez",
			Attendees:     []models.Attendee{},
		},
	}
}

// Seeder writes the initial records a fresh store needs. Every step is
// idempotent.
type Seeder struct {
	store         repositories.Store
	notifications *NotificationService
	cfg           config.SeedConfig
	bcryptCost    int
	logger        *slog.Logger
}

func NewSeeder(store repositories.Store, notifications *NotificationService, cfg config.SeedConfig, bcryptCost int, logger *slog.Logger) *Seeder {
	return &Seeder{
		store:         store,
		notifications: notifications,
		cfg:           cfg,
		bcryptCost:    bcryptCost,
		logger:        logger,
	}
}

func (s *Seeder) Run(ctx context.Context) error {
	if err := s.ensureAdminUser(ctx); err != nil {
		return err
	}
	if !s.cfg.DemoData {
		return nil
	}
	if err := s.ensureUser(ctx, models.User{Name: DemoStudentName, Email: DemoStudentEmail, Verified: true}, DemoStudentPassword); err != nil {
		return fmt.Errorf("failed to seed demo student: %w", err)
	}
	if err := s.seedEvents(ctx); err != nil {
		return fmt.Errorf("failed to seed demo events: %w", err)
	}
	if _, err := s.notifications.SeedSamples(ctx); err != nil {
		return fmt.Errorf("failed to seed notifications: %w", err)
	}
	return nil
}

// ensureAdminUser creates the admin account if ADMIN_EMAIL and ADMIN_PASSWORD are set
func (s *Seeder) ensureAdminUser(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		s.logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	admin := models.User{
		Name:     s.cfg.AdminName,
		Email:    s.cfg.AdminEmail,
		Verified: true,
		IsAdmin:  true,
	}
	if err := s.ensureUser(ctx, admin, s.cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}
	return nil
}

// ensureUser appends user with password unless its email is already taken.
func (s *Seeder) ensureUser(ctx context.Context, user models.User, password string) error {
	hash, err := pkgauth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	created := false
	err = s.store.WithTx(ctx, func(tx repositories.Tx) error {
		repo := repositories.NewUserRepository(tx)
		users, err := repo.List(ctx)
		if err != nil {
			return err
		}
		if repositories.IndexByEmail(users, user.Email) >= 0 {
			return nil
		}
		created = true
		return repo.Save(ctx, append(users, user))
	})
	if err != nil {
		return err
	}

	if created {
		s.logger.Info("seeded user",
			slog.String("email", logger.SanitizedEmail(user.Email)),
			slog.Bool("is_admin", user.IsAdmin),
		)
	}
	return nil
}

// seedEvents writes the demo catalog when the catalog key was never written,
// so an emptied catalog stays empty.
func (s *Seeder) seedEvents(ctx context.Context) error {
	return s.store.WithTx(ctx, func(tx repositories.Tx) error {
		repo := repositories.NewEventRepository(tx)
		ok, err := repo.Initialized(ctx)
		if err != nil || ok {
			return err
		}
		s.logger.Info("seeding demo events")
		return repo.Save(ctx, DemoEvents())
	})
}
