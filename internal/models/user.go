package models

import (
	"strings"
	"time"
)

// BlockDuration is how long an admin block lasts from the moment it is applied.
const BlockDuration = 365 * 24 * time.Hour

// User is a record of the user directory stored under KeyUsers.
// Email is the unique, case-sensitive key of the directory.
type User struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Verified     bool   `json:"verified"`
	IsAdmin      bool   `json:"isAdmin"`
	Blocked      bool   `json:"blocked"`
	BlockedUntil int64  `json:"blockedUntil,omitempty"` // Unix milliseconds, 0 when unset
	Deleted      bool   `json:"deleted"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

// IsCurrentlyBlocked reports whether the block is still in force at now.
// A lapsed block keeps Blocked=true but no longer counts.
func (u *User) IsCurrentlyBlocked(now time.Time) bool {
	return u.Blocked && u.BlockedUntil > now.UnixMilli()
}

// BlockedUntilTime returns BlockedUntil as a time, or nil when unset.
func (u *User) BlockedUntilTime() *time.Time {
	if u.BlockedUntil == 0 {
		return nil
	}
	t := time.UnixMilli(u.BlockedUntil).UTC()
	return &t
}

// HasInstitutionalEmail reports whether email ends with domain.
func HasInstitutionalEmail(email, domain string) bool {
	return strings.HasSuffix(email, domain)
}
