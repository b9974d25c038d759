package directory

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/clearpaw/vetclinic-platform/internal/tenancy"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

// Handler exposes patient search for the check-in form typeahead.
type Handler struct {
	patients *PatientStore
	logger   *logging.Logger
}

// NewHandler creates a new directory handler.
func NewHandler(patients *PatientStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{patients: patients, logger: logger}
}

// SearchPatients handles GET /patients/search?q=...
func (h *Handler) SearchPatients(w http.ResponseWriter, r *http.Request) {
	clinicID, ok := tenancy.ClinicIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing clinic context", http.StatusBadRequest)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.patients.Search(r.Context(), clinicID, q, limit)
	if err != nil {
		h.logger.Error("patient search failed", "error", err, "clinic_id", clinicID)
		http.Error(w, "failed to search patients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": results}); err != nil {
		h.logger.Error("failed to encode search response", "error", err)
	}
}
