package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/repositories"
	"github.com/BradenHooton/conecta/internal/validation"
	"github.com/BradenHooton/conecta/pkg/logger"
)

// ProfileConfig selects how profiles are keyed and how many interests a
// profile may hold.
type ProfileConfig struct {
	PerUser             bool
	MaxInterests        int
	InstitutionalDomain string
}

// ProfileService reads and writes the profile extension of the session user.
type ProfileService struct {
	store  repositories.Store
	cfg    ProfileConfig
	logger *slog.Logger
}

func NewProfileService(store repositories.Store, cfg ProfileConfig, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// profileKey returns the store key holding the profile of email.
func (s *ProfileService) profileKey(email string) string {
	if !s.cfg.PerUser {
		return models.KeyProfile
	}
	return models.KeyProfile + ":" + email
}

// LoadProfile returns the session user's profile reconciled with their
// directory record. Missing fields take their defaults.
func (s *ProfileService) LoadProfile(ctx context.Context) (*models.Profile, error) {
	var profile *models.Profile
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		if err := tx.Lock(ctx, models.KeyUsers, models.KeySession); err != nil {
			return err
		}
		user, err := s.sessionStudent(ctx, tx)
		if err != nil {
			return err
		}

		users, err := repositories.NewUserRepository(tx).List(ctx)
		if err != nil {
			return err
		}
		if i := repositories.IndexByEmail(users, user.Email); i >= 0 {
			user = &users[i]
		}

		profile, err = repositories.NewProfileRepository(tx, s.profileKey(user.Email)).Get(ctx)
		if err != nil {
			return err
		}
		profile = reconcileProfile(profile, user)
		return nil
	})
	if err != nil {
		return nil, storeFailure(s.logger, "failed to load profile", err)
	}
	return profile, nil
}

func reconcileProfile(p *models.Profile, user *models.User) *models.Profile {
	if p == nil {
		p = &models.Profile{}
	}
	p.Name = user.Name
	p.Email = user.Email
	if user.ImageURL != "" {
		p.ImageURL = user.ImageURL
	}

	if _, ok := models.CareerMaxSemesters[p.Career]; !ok {
		p.Career = models.DefaultCareer
	}
	semesters := models.SemestersFor(p.Career)
	if !slices.Contains(semesters, p.Semester) {
		p.Semester = semesters[0]
	}
	if p.SelectedInterests == nil {
		p.SelectedInterests = []string{}
	}
	return p
}

// SaveProfile validates fields and, in one transaction, stores the profile
// and patches the name, email and image of the directory record, the
// session and the events that reference the user.
func (s *ProfileService) SaveProfile(ctx context.Context, fields models.ProfileFields) (*models.Profile, *models.User, error) {
	profile, err := s.normalize(fields)
	if err != nil {
		return nil, nil, err
	}

	var saved models.User
	// Profile keys are only touched while the session key is held.
	err = s.store.WithTx(ctx, func(tx repositories.Tx) error {
		if err := tx.Lock(ctx, models.KeyUsers, models.KeySession, models.KeyEvents); err != nil {
			return err
		}
		current, err := s.sessionStudent(ctx, tx)
		if err != nil {
			return err
		}
		oldEmail := current.Email

		userRepo := repositories.NewUserRepository(tx)
		users, err := userRepo.List(ctx)
		if err != nil {
			return err
		}
		i := repositories.IndexByEmail(users, oldEmail)
		if i < 0 {
			return models.ErrNoSession
		}
		if profile.Email != oldEmail && repositories.IndexByEmail(users, profile.Email) >= 0 {
			return models.ErrDuplicateEmail
		}

		users[i].Name = profile.Name
		users[i].Email = profile.Email
		users[i].ImageURL = profile.ImageURL
		if err := userRepo.Save(ctx, users); err != nil {
			return err
		}
		saved = users[i]

		if err := repositories.NewSessionRepository(tx).Set(ctx, &saved); err != nil {
			return err
		}

		newKey := s.profileKey(profile.Email)
		if err := repositories.NewProfileRepository(tx, newKey).Save(ctx, profile); err != nil {
			return err
		}
		if oldKey := s.profileKey(oldEmail); oldKey != newKey {
			if err := repositories.NewProfileRepository(tx, oldKey).Delete(ctx); err != nil {
				return err
			}
		}

		return renameInEvents(ctx, tx, oldEmail, &saved)
	})
	if err != nil {
		return nil, nil, storeFailure(s.logger, "failed to save profile", err)
	}

	s.logger.Info("profile saved", slog.String("email", logger.SanitizedEmail(saved.Email)))
	return profile, &saved, nil
}

// renameInEvents points organizer and attendee references of oldEmail at
// user's current email and name.
func renameInEvents(ctx context.Context, tx repositories.Tx, oldEmail string, user *models.User) error {
	repo := repositories.NewEventRepository(tx)
	events, err := repo.List(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range events {
		ev := &events[i]
		if ev.OrganizerID == oldEmail && (ev.OrganizerID != user.Email || ev.OrganizerName != user.Name) {
			ev.OrganizerID = user.Email
			ev.OrganizerName = user.Name
			changed = true
		}
		for j := range ev.Attendees {
			a := &ev.Attendees[j]
			if a.UserID == oldEmail && (a.UserID != user.Email || a.UserName != user.Name) {
				a.UserID = user.Email
				a.UserName = user.Name
				changed = true
			}
		}
	}
	if !changed {
		return nil
	}
	return repo.Save(ctx, events)
}

// sessionStudent returns the session user, refusing admins.
func (s *ProfileService) sessionStudent(ctx context.Context, tx repositories.Tx) (*models.User, error) {
	user, err := repositories.NewSessionRepository(tx).Get(ctx)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return nil, models.ErrAdminProfile
	}
	return user, nil
}

func (s *ProfileService) normalize(f models.ProfileFields) (*models.Profile, error) {
	if err := validation.Struct(f); err != nil {
		return nil, err
	}

	p := &models.Profile{
		Name:              strings.TrimSpace(f.Name),
		Email:             strings.TrimSpace(f.Email),
		Career:            f.Career,
		Semester:          f.Semester,
		SelectedInterests: []string{},
		AboutMe:           strings.TrimSpace(f.AboutMe),
		Hobby:             strings.TrimSpace(f.Hobby),
		FavoriteMovie:     strings.TrimSpace(f.FavoriteMovie),
		ImageURL:          strings.TrimSpace(f.ImageURL),
	}

	for _, interest := range f.SelectedInterests {
		interest = strings.TrimSpace(interest)
		if !slices.Contains(models.Interests, interest) {
			return nil, models.NewValidationError("selectedInterests", fmt.Sprintf("unknown interest %q", interest))
		}
		if !slices.Contains(p.SelectedInterests, interest) {
			p.SelectedInterests = append(p.SelectedInterests, interest)
		}
	}
	if len(p.SelectedInterests) > s.cfg.MaxInterests {
		return nil, models.NewValidationError("selectedInterests", fmt.Sprintf("must contain at most %d item(s)", s.cfg.MaxInterests))
	}

	semesters := models.SemestersFor(p.Career)
	if semesters == nil {
		return nil, models.NewValidationError("career", "unknown career")
	}
	if p.Semester == "" {
		p.Semester = semesters[0]
	} else if !slices.Contains(semesters, p.Semester) {
		return nil, models.NewValidationError("semester", "not offered by the selected career")
	}

	if !models.HasInstitutionalEmail(p.Email, s.cfg.InstitutionalDomain) {
		return nil, models.ErrInvalidDomain
	}
	return p, nil
}
