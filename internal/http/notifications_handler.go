package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/notify"
)

type Drainer interface {
	Drain() []notify.Notification
}

type NotificationsHandler struct {
	feed Drainer
}

func NewNotificationsHandler(feed Drainer) *NotificationsHandler {
	return &NotificationsHandler{feed: feed}
}

// List returns pending toasts oldest first; each is delivered once.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.feed.Drain())
}
