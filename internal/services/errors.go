package services

import (
	"errors"
	"log/slog"

	"github.com/BradenHooton/conecta/internal/models"
)

// domainErrors pass through service boundaries unchanged; anything else is
// a storage or encoding failure and is reported as ErrInternalServer.
var domainErrors = []error{
	models.ErrNotFound,
	models.ErrConflict,
	models.ErrUnauthorized,
	models.ErrForbidden,
	models.ErrBadRequest,
	models.ErrInternalServer,
	models.ErrInvalidDomain,
	models.ErrInvalidCredentials,
	models.ErrNotVerified,
	models.ErrInvalidCode,
	models.ErrAccountBlocked,
	models.ErrNoSession,
	models.ErrAdminProfile,
	models.ErrValidation,
	models.ErrTxAborted,
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// storeFailure logs err and hides it behind ErrInternalServer unless it is
// already a domain error.
func storeFailure(logger *slog.Logger, msg string, err error) error {
	if isDomainError(err) {
		return err
	}
	logger.Error(msg, slog.Any("error", err))
	return models.ErrInternalServer
}
