package handlers

import (
	"context"
	"net/http"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/BradenHooton/conecta/internal/services"
	pkghttp "github.com/BradenHooton/conecta/pkg/http"
	"github.com/go-chi/chi/v5"
)

// NotificationServiceInterface defines the notification feed operations
type NotificationServiceInterface interface {
	List(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	DeleteOne(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	DeleteAll(ctx context.Context) error
}

// NotificationHandler handles notification feed HTTP requests
type NotificationHandler struct {
	service NotificationServiceInterface
}

func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// NotificationListResponse is the feed plus its unread badge count
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// List returns the feed, newest first
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, NotificationListResponse{
		Notifications: items,
		Unread:        services.UnreadCount(items),
	})
}

// MarkRead flags one notification as read
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.service.MarkRead(r.Context(), chi.URLParam(r, "id")))
}

// Delete removes one notification
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.service.DeleteOne(r.Context(), chi.URLParam(r, "id")))
}

// MarkAllRead flags the whole feed as read
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.service.MarkAllRead(r.Context()))
}

// DeleteAll empties the feed
// @Router /notifications [delete]
func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.service.DeleteAll(r.Context()))
}

func (h *NotificationHandler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteNoContent(w)
}
