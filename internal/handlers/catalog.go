package handlers

import (
	"net/http"

	"github.com/BradenHooton/conecta/internal/models"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
)

// Career is a career together with its semester labels
type Career struct {
	Name      string   `json:"name"`
	Semesters []string `json:"semesters"`
}

// CatalogResponse lists the fixed choices offered by the forms
type CatalogResponse struct {
	Places       []string `json:"places"`
	Interests    []string `json:"interests"`
	Careers      []Career `json:"careers"`
	MaxInterests int      `json:"maxInterests"`
}

// CatalogHandler serves the static catalog.
func CatalogHandler(maxInterests int) http.HandlerFunc {
	careers := make([]Career, 0, len(models.CareerMaxSemesters))
	for _, name := range models.Careers() {
		careers = append(careers, Career{Name: name, Semesters: models.SemestersFor(name)})
	}
	resp := CatalogResponse{
		Places:       models.Places,
		Interests:    models.Interests,
		Careers:      careers,
		MaxInterests: maxInterests,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteJSON(w, http.StatusOK, resp)
	}
}
