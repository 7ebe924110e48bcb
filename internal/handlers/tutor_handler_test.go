package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/raza141/SchedulerBooker/internal/models"
	"github.com/raza141/SchedulerBooker/internal/repository"
)

type stubTutorStore struct {
	getResult *models.Tutor
	getErr    error
}

func (s *stubTutorStore) Create(_ context.Context, input repository.CreateTutorInput) (*models.Tutor, error) {
	return nil, nil
}

func (s *stubTutorStore) GetByID(_ context.Context, tutorID int64) (*models.Tutor, error) {
	return s.getResult, s.getErr
}

func (s *stubTutorStore) List(_ context.Context, limit, offset int) ([]models.Tutor, error) {
	return nil, nil
}

func (s *stubTutorStore) Count(_ context.Context) (int, error) {
	return 0, nil
}

func (s *stubTutorStore) UpdateStatus(_ context.Context, tutorID int64, status string) (*models.Tutor, error) {
	return nil, nil
}

type stubAvailabilityChecker struct {
	available   bool
	err         error
	lastTutorID int64
	lastStartAt time.Time
	lastEndAt   time.Time
}

func (s *stubAvailabilityChecker) CheckAvailability(_ context.Context, tutorID int64, startAt, endAt time.Time) (bool, error) {
	s.lastTutorID = tutorID
	s.lastStartAt = startAt
	s.lastEndAt = endAt
	return s.available, s.err
}

func TestCheckAvailabilityReportsFreeWindow(t *testing.T) {
	schedule := "weekday afternoons"
	store := &stubTutorStore{getResult: &models.Tutor{ID: 7, Availability: &schedule}}
	checker := &stubAvailabilityChecker{available: true}
	handler := &TutorHandler{store: store, booking: checker}

	app := fiber.New()
	app.Get("/api/v1/tutors/:id/availability", handler.CheckAvailability)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/tutors/7/availability?start=2030-03-15T09:00:00Z&end=2030-03-15T10:00:00Z", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if checker.lastTutorID != 7 {
		t.Fatalf("expected tutor id 7, got %d", checker.lastTutorID)
	}
	wantStart := time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC)
	if !checker.lastStartAt.Equal(wantStart) || !checker.lastEndAt.Equal(wantStart.Add(time.Hour)) {
		t.Fatalf("unexpected window: %v - %v", checker.lastStartAt, checker.lastEndAt)
	}

	var body struct {
		Available bool    `json:"available"`
		Schedule  *string `json:"schedule"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !body.Available {
		t.Fatal("expected available to be true")
	}
	if body.Schedule == nil || *body.Schedule != "weekday afternoons" {
		t.Fatalf("expected schedule in response, got %+v", body.Schedule)
	}
}

func TestCheckAvailabilityRejectsMalformedWindow(t *testing.T) {
	store := &stubTutorStore{getResult: &models.Tutor{ID: 7}}
	checker := &stubAvailabilityChecker{available: true}
	handler := &TutorHandler{store: store, booking: checker}

	app := fiber.New()
	app.Get("/api/v1/tutors/:id/availability", handler.CheckAvailability)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tutors/7/availability?start=soon&end=later", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
