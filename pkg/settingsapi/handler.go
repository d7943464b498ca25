package settingsapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fleettrack/notifier/pkg/fleet"
	"github.com/fleettrack/notifier/pkg/logger"
	"github.com/fleettrack/notifier/pkg/notifier"
)

// checkTimeout caps one validation probe; a dead SMTP server should fail the
// check, not hang the settings editor.
const checkTimeout = 15 * time.Second

type checkResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Handler serves the settings validation endpoints.
type Handler struct {
	mail notifier.Validator
	push notifier.Validator
	log  *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger for the Handler.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates the validation handler around the two channel validators.
func NewHandler(mail, push notifier.Validator, opts ...HandlerOption) *Handler {
	h := &Handler{
		mail: mail,
		push: push,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router mounts the validation endpoints:
//
//	POST /settings/check-mail
//	POST /settings/check-push
//
// Both accept a fleet.NotificationSettings JSON payload and answer 200 with
// {"ok":true}, 422 with {"ok":false,"error":...} when the configuration is
// unusable, or 400 on a malformed payload.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/settings/check-mail", h.check(h.mail))
	r.Post("/settings/check-push", h.check(h.push))
	return r
}

func (h *Handler) check(v notifier.Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings fleet.NotificationSettings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeJSON(w, http.StatusBadRequest, checkResponse{OK: false, Error: "invalid settings payload"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		if err := v.Validate(ctx, settings); err != nil {
			h.log.LogAttrs(r.Context(), slog.LevelInfo, "settings validation rejected",
				logger.UserID(settings.UserID),
				logger.Error(err),
			)
			writeJSON(w, http.StatusUnprocessableEntity, checkResponse{OK: false, Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, checkResponse{OK: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
