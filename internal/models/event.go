package models

// Attendee is a member of an event's RSVP list.
type Attendee struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// Event is a record of the event catalog stored under KeyEvents.
type Event struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Datetime      string     `json:"datetime"` // ISO 8601
	Place         string     `json:"place"`
	Capacity      int        `json:"capacity"`
	Tags          []string   `json:"tags"`
	ImageURI      *string    `json:"imageUri"`
	OrganizerID   string     `json:"organizerId"`
	OrganizerName string     `json:"organizerName"`
	Attendees     []Attendee `json:"attendees"`
}

// IsFull reports whether no more attendees can join.
func (e *Event) IsFull() bool {
	return len(e.Attendees) >= e.Capacity
}

// IsAttending reports whether userID is on the attendee list.
func (e *Event) IsAttending(userID string) bool {
	return e.attendeeIndex(userID) >= 0
}

func (e *Event) attendeeIndex(userID string) int {
	for i, a := range e.Attendees {
		if a.UserID == userID {
			return i
		}
	}
	return -1
}

// ToggleAttendee removes userID if present, otherwise appends it while
// there is room. It returns whether the user is attending afterwards.
func (e *Event) ToggleAttendee(userID, userName string) bool {
	if i := e.attendeeIndex(userID); i >= 0 {
		e.Attendees = append(e.Attendees[:i:i], e.Attendees[i+1:]...)
		return false
	}
	if e.IsFull() {
		return false
	}
	e.Attendees = append(e.Attendees, Attendee{UserID: userID, UserName: userName})
	return true
}

// Date returns the YYYY-MM-DD prefix of Datetime.
func (e *Event) Date() string {
	if len(e.Datetime) < 10 {
		return e.Datetime
	}
	return e.Datetime[:10]
}

// EventFields carries the organizer-editable part of an event.
type EventFields struct {
	Title       string   `json:"title" validate:"notblank"`
	Description string   `json:"description" validate:"notblank"`
	Datetime    string   `json:"datetime" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Place       string   `json:"place" validate:"notblank"`
	Capacity    int      `json:"capacity" validate:"gt=0"`
	Tags        []string `json:"tags" validate:"min=1,dive,notblank"`
	ImageURI    *string  `json:"imageUri"`
}

// EventFilter selects events; zero-valued fields match everything.
type EventFilter struct {
	Interests     []string
	Text          string
	Place         string
	Date          string
	OnlyAvailable bool
}
