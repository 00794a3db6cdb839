package handlers

import (
	"time"

	"github.com/BradenHooton/conecta/internal/models"
)

// UserResponse is the public view of a directory record. The password hash
// never leaves the service.
type UserResponse struct {
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Verified         bool       `json:"verified"`
	IsAdmin          bool       `json:"isAdmin"`
	Blocked          bool       `json:"blocked"`
	BlockedUntil     *time.Time `json:"blockedUntil,omitempty"`
	CurrentlyBlocked bool       `json:"currentlyBlocked"`
	ImageURL         string     `json:"imageUrl,omitempty"`
}

func NewUserResponse(u *models.User, now time.Time) UserResponse {
	return UserResponse{
		Name:             u.Name,
		Email:            u.Email,
		Verified:         u.Verified,
		IsAdmin:          u.IsAdmin,
		Blocked:          u.Blocked,
		BlockedUntil:     u.BlockedUntilTime(),
		CurrentlyBlocked: u.IsCurrentlyBlocked(now),
		ImageURL:         u.ImageURL,
	}
}

// SessionResponse is returned whenever a session is opened or re-keyed.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// EventResponse decorates an event with the caller's view of it.
type EventResponse struct {
	models.Event
	SeatsLeft int  `json:"seatsLeft"`
	Attending bool `json:"attending"`
}

func NewEventResponse(ev *models.Event, callerEmail string) EventResponse {
	left := ev.Capacity - len(ev.Attendees)
	if left < 0 {
		left = 0
	}
	return EventResponse{
		Event:     *ev,
		SeatsLeft: left,
		Attending: ev.IsAttending(callerEmail),
	}
}
