package handlers

import (
	"errors"
	"net/http"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/validation"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
)

// ValidateRequest validates a request struct using go-playground/validator.
// It returns a *models.ValidationError for the first rejected field.
func ValidateRequest(req interface{}) error {
	return validation.Struct(req)
}

// decodeRequest reads the JSON body into dst and validates it. It writes the
// error response itself and reports whether the handler may continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := pkghttp.DecodeJSON(w, r, dst); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	if err := ValidateRequest(dst); err != nil {
		writeServiceError(w, err)
		return false
	}
	return true
}

// writeServiceError maps a service error onto the JSON error envelope.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		pkghttp.WriteValidationError(w, verr.Field, verr.Message)
	case errors.Is(err, models.ErrDuplicateEmail):
		pkghttp.WriteError(w, http.StatusConflict, "duplicate_email", "Este correo ya está registrado")
	case errors.Is(err, models.ErrInvalidDomain):
		pkghttp.WriteError(w, http.StatusBadRequest, "invalid_domain", "Debes usar tu correo institucional")
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Correo o contraseña incorrectos")
	case errors.Is(err, models.ErrInvalidCode):
		pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_code", "Código de verificación incorrecto")
	case errors.Is(err, models.ErrNotVerified):
		pkghttp.WriteError(w, http.StatusForbidden, "not_verified", "Tu cuenta aún no ha sido verificada")
	case errors.Is(err, models.ErrAccountBlocked):
		pkghttp.WriteError(w, http.StatusForbidden, "account_blocked", "Tu cuenta está bloqueada")
	case errors.Is(err, models.ErrNoSession):
		pkghttp.WriteError(w, http.StatusUnauthorized, "no_session", "No hay una sesión activa")
	case errors.Is(err, models.ErrAdminProfile):
		pkghttp.WriteError(w, http.StatusConflict, "admin_profile", "Los administradores no tienen perfil de estudiante")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "No tienes permiso para realizar esta acción")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Recurso no encontrado")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "El recurso ya existe")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Solicitud inválida")
	case errors.Is(err, models.ErrTxAborted):
		pkghttp.WriteError(w, http.StatusServiceUnavailable, "store_busy", "El servicio está ocupado, intenta de nuevo")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
