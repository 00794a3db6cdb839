package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/conecta/internal/services"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
)

// MediaServiceInterface defines the upload presigning operation
type MediaServiceInterface interface {
	PresignUpload(ctx context.Context, kind string) (*services.Upload, error)
}

// MediaHandler hands out image upload URLs
type MediaHandler struct {
	service MediaServiceInterface
}

func NewMediaHandler(service MediaServiceInterface) *MediaHandler {
	return &MediaHandler{service: service}
}

// PresignUploadRequest selects what the image is for
type PresignUploadRequest struct {
	Kind string `json:"kind" validate:"required,oneof=event profile"`
}

// PresignUpload returns a presigned PUT URL
// @Router /media/uploads [post]
func (h *MediaHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var req PresignUploadRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	upload, err := h.service.PresignUpload(r.Context(), req.Kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, upload)
}
