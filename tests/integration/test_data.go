//go:build integration

package integration

import (
	"fmt"
	"time"

	"github.com/BradenHooton/conecta/internal/models"
)

// TestUser generates unique institutional credentials using a timestamp
func TestUser(suffix string) (email, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s%s", ts, suffix, models.DefaultInstitutionalDomain)
	password = "123123"
	return
}

// TestEventFields returns a valid event form for Salón 101.
func TestEventFields(title string, capacity int) models.EventFields {
	return models.EventFields{
		Title:       title,
		Description: "Evento de prueba",
		Datetime:    "2025-12-15T16:00:00Z",
		Place:       "Salón 101",
		Capacity:    capacity,
		Tags:        []string{"Tecnología"},
	}
}
