package waitinglist

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearpaw/vetclinic-platform/internal/tenancy"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

// Handler handles HTTP requests for the waiting-list board.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new board handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CheckIn handles POST /board/entries.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := tenancy.ClinicIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing clinic context")
		return
	}

	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ClinicID = clinicID

	entry, err := h.service.CheckIn(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: entry})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /board/entries/{entryID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := tenancy.ClinicIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing clinic context")
		return
	}
	entryID := chi.URLParam(r, "entryID")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.service.Transition(r.Context(), clinicID, entryID, status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: entry})
}

type updatePriorityRequest struct {
	Priority string `json:"priority"`
}

// UpdatePriority handles PUT /board/entries/{entryID}/priority.
func (h *Handler) UpdatePriority(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := tenancy.ClinicIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing clinic context")
		return
	}
	entryID := chi.URLParam(r, "entryID")

	var req updatePriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	priority, err := ParsePriority(req.Priority)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.service.Reprioritize(r.Context(), clinicID, entryID, priority)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: entry})
}

// Remove handles DELETE /board/entries/{entryID}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := tenancy.ClinicIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing clinic context")
		return
	}
	entryID := chi.URLParam(r, "entryID")

	if err := h.service.Remove(r.Context(), clinicID, entryID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

// Events handles GET /board/entries/{entryID}/events.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := tenancy.ClinicIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusBadRequest, "missing clinic context")
		return
	}
	entryID := chi.URLParam(r, "entryID")

	events, err := h.service.EntryEvents(r.Context(), clinicID, entryID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: events})
}

// writeServiceError maps domain errors onto the response envelope. Unexpected
// errors are logged and collapsed into a generic message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrTerminalEntry):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("board request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "failed to update")
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Success: false, Error: msg})
}
