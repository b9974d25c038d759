package whiteboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clearpaw/vetclinic-platform/internal/tenancy"
	"github.com/clearpaw/vetclinic-platform/pkg/logging"
)

func TestGetBoard(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newBoardFixture(start)
	f.checkIn(t, "limp", "urgent", "pet-1")
	handler := NewHandler(f.projector(), logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/board?show=waiting&date=2026-03-02", nil)
	req = req.WithContext(tenancy.WithClinicID(req.Context(), "clinic-1"))
	rec := httptest.NewRecorder()
	handler.GetBoard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Sno != 1 {
		t.Fatalf("unexpected board payload: %+v", resp)
	}
}

func TestGetBoardRejectsBadDate(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newBoardFixture(start)
	handler := NewHandler(f.projector(), logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/board?date=yesterday", nil)
	req = req.WithContext(tenancy.WithClinicID(req.Context(), "clinic-1"))
	rec := httptest.NewRecorder()
	handler.GetBoard(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetBoardRequiresClinic(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newBoardFixture(start)
	handler := NewHandler(f.projector(), logging.New("error"))

	rec := httptest.NewRecorder()
	handler.GetBoard(rec, httptest.NewRequest(http.MethodGet, "/board", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
