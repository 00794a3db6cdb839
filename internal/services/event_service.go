package services

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/repositories"
	"github.com/BradenHooton/conecta/internal/validation"
)

// isoMillis is the datetime layout stored on events.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// EventService manages the event catalog.
type EventService struct {
	store  repositories.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewEventService(store repositories.Store, logger *slog.Logger) *EventService {
	return &EventService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ListEvents returns the events matching every non-empty field of filter, in
// catalog order.
func (s *EventService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	events, err := repositories.NewEventRepository(s.store).List(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to load events", err)
	}

	text := strings.ToLower(strings.TrimSpace(filter.Text))
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if matchesFilter(&ev, filter, text) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func matchesFilter(ev *models.Event, f models.EventFilter, text string) bool {
	if len(f.Interests) > 0 && !slices.ContainsFunc(ev.Tags, func(tag string) bool {
		return slices.Contains(f.Interests, tag)
	}) {
		return false
	}
	if text != "" &&
		!strings.Contains(strings.ToLower(ev.Title), text) &&
		!strings.Contains(strings.ToLower(ev.Description), text) &&
		!strings.Contains(strings.ToLower(ev.Place), text) {
		return false
	}
	if f.Place != "" && ev.Place != f.Place {
		return false
	}
	if f.Date != "" && ev.Date() != f.Date {
		return false
	}
	if f.OnlyAvailable && ev.IsFull() {
		return false
	}
	return true
}

// ListEventDates returns the distinct YYYY-MM-DD dates of the catalog, sorted.
func (s *EventService) ListEventDates(ctx context.Context) ([]string, error) {
	events, err := repositories.NewEventRepository(s.store).List(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to load events", err)
	}

	seen := make(map[string]struct{}, len(events))
	dates := make([]string, 0, len(events))
	for i := range events {
		d := events[i].Date()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	events, err := repositories.NewEventRepository(s.store).List(ctx)
	if err != nil {
		return nil, storeFailure(s.logger, "failed to load events", err)
	}
	i := repositories.EventIndex(events, id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	return &events[i], nil
}

// CreateEvent validates fields and prepends a new event organized by caller.
// An omitted datetime defaults to now.
func (s *EventService) CreateEvent(ctx context.Context, caller *models.User, fields models.EventFields) (*models.Event, error) {
	fields, err := s.normalizeFields(fields)
	if err != nil {
		return nil, err
	}
	if fields.Datetime == "" {
		fields.Datetime = s.now().UTC().Format(isoMillis)
	}

	var created models.Event
	err = s.store.WithTx(ctx, func(tx repositories.Tx) error {
		repo := repositories.NewEventRepository(tx)
		events, err := repo.List(ctx)
		if err != nil {
			return err
		}

		created = models.Event{
			ID:            s.nextID(events),
			OrganizerID:   caller.Email,
			OrganizerName: caller.Name,
			Attendees:     []models.Attendee{},
		}
		applyFields(&created, fields)

		return repo.Save(ctx, append([]models.Event{created}, events...))
	})
	if err != nil {
		return nil, storeFailure(s.logger, "failed to create event", err)
	}

	s.logger.Info("event created", slog.String("event_id", created.ID))
	return &created, nil
}

// UpdateEvent replaces the editable fields of event id. Only its organizer
// may do so. An omitted datetime keeps the stored one.
func (s *EventService) UpdateEvent(ctx context.Context, caller *models.User, id string, fields models.EventFields) (*models.Event, error) {
	fields, err := s.normalizeFields(fields)
	if err != nil {
		return nil, err
	}

	var updated models.Event
	err = s.store.WithTx(ctx, func(tx repositories.Tx) error {
		repo := repositories.NewEventRepository(tx)
		events, err := repo.List(ctx)
		if err != nil {
			return err
		}
		i := repositories.EventIndex(events, id)
		if i < 0 {
			return models.ErrNotFound
		}
		if events[i].OrganizerID != caller.Email {
			return models.ErrForbidden
		}
		if fields.Capacity < len(events[i].Attendees) {
			return models.NewValidationError("capacity", "cannot be lower than the current number of attendees")
		}
		if fields.Datetime == "" {
			fields.Datetime = events[i].Datetime
		}

		applyFields(&events[i], fields)
		updated = events[i]
		return repo.Save(ctx, events)
	})
	if err != nil {
		return nil, storeFailure(s.logger, "failed to update event", err)
	}
	return &updated, nil
}

// DeleteEvent removes event id. Only its organizer may do so.
func (s *EventService) DeleteEvent(ctx context.Context, caller *models.User, id string) error {
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		repo := repositories.NewEventRepository(tx)
		events, err := repo.List(ctx)
		if err != nil {
			return err
		}
		i := repositories.EventIndex(events, id)
		if i < 0 {
			return models.ErrNotFound
		}
		if events[i].OrganizerID != caller.Email {
			return models.ErrForbidden
		}
		return repo.Save(ctx, append(events[:i], events[i+1:]...))
	})
	if err != nil {
		return storeFailure(s.logger, "failed to delete event", err)
	}

	s.logger.Info("event deleted", slog.String("event_id", id))
	return nil
}

// ToggleAttendance makes caller leave event id when attending, or join it
// when there is room. Joining a full event changes nothing and is not an
// error. It returns the event and whether caller attends it afterwards.
func (s *EventService) ToggleAttendance(ctx context.Context, caller *models.User, id string) (*models.Event, bool, error) {
	var (
		event     models.Event
		attending bool
	)
	err := s.store.WithTx(ctx, func(tx repositories.Tx) error {
		repo := repositories.NewEventRepository(tx)
		events, err := repo.List(ctx)
		if err != nil {
			return err
		}
		i := repositories.EventIndex(events, id)
		if i < 0 {
			return models.ErrNotFound
		}

		before := len(events[i].Attendees)
		attending = events[i].ToggleAttendee(caller.Email, caller.Name)
		event = events[i]
		if len(event.Attendees) == before {
			return nil
		}
		return repo.Save(ctx, events)
	})
	if err != nil {
		return nil, false, storeFailure(s.logger, "failed to toggle attendance", err)
	}
	return &event, attending, nil
}

func (s *EventService) normalizeFields(f models.EventFields) (models.EventFields, error) {
	if err := validation.Struct(f); err != nil {
		return f, err
	}

	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Place = strings.TrimSpace(f.Place)

	tags := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		t = strings.TrimSpace(t)
		if !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	f.Tags = tags

	if f.ImageURI != nil && strings.TrimSpace(*f.ImageURI) == "" {
		f.ImageURI = nil
	}
	return f, nil
}

func applyFields(ev *models.Event, f models.EventFields) {
	ev.Title = f.Title
	ev.Description = f.Description
	ev.Datetime = f.Datetime
	ev.Place = f.Place
	ev.Capacity = f.Capacity
	ev.Tags = f.Tags
	ev.ImageURI = f.ImageURI
}

// nextID derives an id from the current Unix millisecond, bumped past any
// id already in use.
func (s *EventService) nextID(events []models.Event) string {
	n := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if repositories.EventIndex(events, id) < 0 {
			return id
		}
		n++
	}
}
