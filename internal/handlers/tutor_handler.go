package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/raza141/SchedulerBooker/internal/models"
	"github.com/raza141/SchedulerBooker/internal/repository"
)

type tutorStore interface {
	Create(ctx context.Context, input repository.CreateTutorInput) (*models.Tutor, error)
	GetByID(ctx context.Context, tutorID int64) (*models.Tutor, error)
	List(ctx context.Context, limit, offset int) ([]models.Tutor, error)
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, tutorID int64, status string) (*models.Tutor, error)
}

type availabilityChecker interface {
	CheckAvailability(ctx context.Context, tutorID int64, startAt, endAt time.Time) (bool, error)
}

type TutorHandler struct {
	store   tutorStore
	booking availabilityChecker
}

func NewTutorHandler(store *repository.TutorRepository, booking availabilityChecker) *TutorHandler {
	return &TutorHandler{store: store, booking: booking}
}

type createTutorRequest struct {
	FullName     string  `json:"full_name" validate:"required"`
	Expertise    string  `json:"expertise" validate:"required"`
	HourlyRate   float64 `json:"hourly_rate" validate:"required,gt=0"`
	Email        string  `json:"email" validate:"required,email"`
	Phone        string  `json:"phone"`
	Availability *string `json:"availability"`
}

func (h *TutorHandler) CreateTutor(c *fiber.Ctx) error {
	var req createTutorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tutor, err := h.store.Create(c.Context(), repository.CreateTutorInput{
		FullName:     strings.TrimSpace(req.FullName),
		Expertise:    strings.TrimSpace(req.Expertise),
		HourlyRate:   req.HourlyRate,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		Availability: req.Availability,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create tutor"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"tutor": tutor})
}

func (h *TutorHandler) ListTutors(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	total, err := h.store.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list tutors"})
	}

	tutors, err := h.store.List(c.Context(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list tutors"})
	}

	return c.JSON(fiber.Map{
		"tutors":     tutors,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *TutorHandler) GetTutor(c *fiber.Ctx) error {
	tutorID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || tutorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	tutor, err := h.store.GetByID(c.Context(), tutorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tutor"})
	}

	return c.JSON(fiber.Map{"tutor": tutor})
}

func (h *TutorHandler) UpdateTutorStatus(c *fiber.Ctx) error {
	tutorID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || tutorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != "active" && status != "inactive" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be active or inactive"})
	}

	tutor, err := h.store.UpdateStatus(c.Context(), tutorID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tutor"})
	}

	return c.JSON(fiber.Map{"tutor": tutor})
}

// CheckAvailability answers whether the tutor is free for a window, alongside
// their free-text schedule so callers can show both.
func (h *TutorHandler) CheckAvailability(c *fiber.Ctx) error {
	tutorID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || tutorID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	startAt, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("start")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be a valid RFC3339 timestamp"})
	}
	endAt, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("end")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end must be a valid RFC3339 timestamp"})
	}

	tutor, err := h.store.GetByID(c.Context(), tutorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tutor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tutor"})
	}

	available, err := h.booking.CheckAvailability(c.Context(), tutorID, startAt, endAt)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{
		"available": available,
		"schedule":  tutor.Availability,
	})
}
