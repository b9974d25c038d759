package whiteboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clearpaw/vetclinic-platform/internal/tenancy"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

// Handler serves the read-only board view.
type Handler struct {
	projector *Projector
	logger    *logging.Logger
	now       func() time.Time
}

// NewHandler creates a new whiteboard handler.
func NewHandler(projector *Projector, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		projector: projector,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type listResponse struct {
	Data []Row `json:"data"`
}

// GetBoard handles GET /board.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := tenancy.ClinicIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing clinic context", http.StatusBadRequest)
		return
	}

	day := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	filter := Filter{
		Show:       ParseShow(r.URL.Query().Get("show")),
		ProviderID: r.URL.Query().Get("provider_id"),
		ApptType:   r.URL.Query().Get("appt_type"),
		Query:      r.URL.Query().Get("q"),
	}

	rows, err := h.projector.Build(r.Context(), clinicID, day, filter)
	if err != nil {
		h.logger.Error("board projection failed", "error", err, "clinic_id", clinicID)
		http.Error(w, "failed to load board", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listResponse{Data: rows})
}
