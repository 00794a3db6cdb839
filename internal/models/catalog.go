package models

import (
	"fmt"
	"sort"
)

// Keys of the persisted key-value entries.
const (
	KeyUsers          = "users"
	KeySession        = "currentUser"
	KeyProfile        = "@conectaudb_profile"
	KeyEvents         = "UDb_EVENTS_V2"
	KeyDeletionNotice = "accountDeletedMessage"
	KeyNotifications  = "notifications"
)

const (
	DefaultInstitutionalDomain = "@uniboyaca.edu.co"
	DefaultVerificationCode    = "789456"
	DefaultCareer              = "Ingeniería en Multimedia"
	DeletionNoticeMessage      = "Tu cuenta ha sido eliminada por un administrador."
)

// Places is the fixed list of campus locations offered for events.
var Places = []string{
	"Auditorio Principal",
	"Salón 101",
	"Sala de Conferencias",
	"Auditorio Secundario",
	"Sala de Reuniones",
	"Biblioteca Central",
	"Cafetería",
}

// Interests is the fixed list of interest tags.
var Interests = []string{
	"Animación",
	"Narrativas Digitales",
	"Arte",
	"Música",
	"Tecnología",
	"Deportes",
	"Literatura",
	"Programación",
	"Fotografía",
	"Videojuegos",
	"Cine",
	"Educación",
	"Ciencia",
	"Sostenibilidad",
}

// CareerMaxSemesters maps each career to its number of semesters.
var CareerMaxSemesters = map[string]int{
	"Medicina":                                   12,
	"Enfermería":                                 8,
	"Bacteriología y Laboratorio Clínico":        10,
	"Terapia Respiratoria":                       8,
	"Fisioterapia":                               9,
	"Ingeniería Sanitaria":                       9,
	"Ingeniería Ambiental":                       8,
	"Ingeniería Industrial":                      8,
	"Ingeniería Civil":                           8,
	"Ingeniería Mecatrónica":                     9,
	"Psicología":                                 10,
	"Licenciatura en Educación Infantil":         8,
	"Diseño Gráfico":                             8,
	"Arquitectura":                               9,
	"Comunicación Social":                        8,
	"Derecho y Ciencias Políticas":               10,
	"Administración de Negocios Internacionales": 8,
	"Administración de Empresas":                 8,
	"Contaduría Pública":                         8,
	"Ingeniería en Multimedia":                   9,
	"Ingeniería de Sistemas":                     9,
}

// Careers returns the career names sorted alphabetically.
func Careers() []string {
	careers := make([]string, 0, len(CareerMaxSemesters))
	for c := range CareerMaxSemesters {
		careers = append(careers, c)
	}
	sort.Strings(careers)
	return careers
}

// SemestersFor returns the ordinal semester labels of career, or nil for
// an unknown career.
func SemestersFor(career string) []string {
	max, ok := CareerMaxSemesters[career]
	if !ok {
		return nil
	}
	semesters := make([]string, 0, max)
	for i := 1; i <= max; i++ {
		semesters = append(semesters, fmt.Sprintf("%dº Semestre", i))
	}
	return semesters
}
