// Package sessionapi exposes the HTTP surface for session creation.
package sessionapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/VaheKhachatryan/InTechTestAppSln/internal/cache"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/metrics"
	"github.com/VaheKhachatryan/InTechTestAppSln/internal/session"
)

const maxCreateBodyBytes = 64 << 10 // 64 KiB

// Handler wires the session HTTP endpoints to the session service.
type Handler struct {
	log      *slog.Logger
	sessions *session.Service
	metrics  *metrics.Set
}

// NewHandler constructs a session API Handler. m may be nil.
func NewHandler(log *slog.Logger, sessions *session.Service, m *metrics.Set) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, sessions: sessions, metrics: m}
}

// Register wires session routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/Session/Create", h.handleCreate)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var sess session.Session
	if err := decodeJSON(w, r, maxCreateBodyBytes, &sess); err != nil {
		h.log.Info("session.create.bad_request", "err", err)
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.sessions.Create(r.Context(), sess)
	if err != nil {
		h.log.Info("session.create.fail", "err", err)

		// Transient store failures are the caller's cue to retry.
		if errors.Is(err, cache.ErrStoreUnavailable) {
			writeFailure(w, http.StatusServiceUnavailable, "session store unavailable")
			return
		}
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	h.metrics.SessionCreated()
	writeJSON(w, http.StatusOK, createResponse{Session: token})
}
