package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/raza141/SchedulerBooker/internal/models"
	"github.com/raza141/SchedulerBooker/internal/repository"
	"github.com/raza141/SchedulerBooker/internal/services"
)

type SessionHandler struct {
	service bookingApplicationService
}

type bookingApplicationService interface {
	CreateSession(ctx context.Context, input services.CreateSessionInput) (*models.SessionDetail, error)
	ListSessions(ctx context.Context, filter repository.SessionListFilter) ([]models.SessionDetail, error)
	GetSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error)
	ConfirmSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error)
	SetEndTime(ctx context.Context, sessionID int64, endAt time.Time) (*models.SessionDetail, error)
}

func NewSessionHandler(service *services.BookingService) *SessionHandler {
	return &SessionHandler{service: service}
}

type bookSessionRequest struct {
	StudentID int64   `json:"student_id"`
	TutorID   int64   `json:"tutor_id"`
	StartAt   string  `json:"start_at"`
	EndAt     *string `json:"end_at"`
	Location  string  `json:"location"`
	Topic     string  `json:"topic"`
}

type setEndTimeRequest struct {
	EndAt string `json:"end_at"`
}

func (h *SessionHandler) BookSession(c *fiber.Ctx) error {
	var req bookSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	startAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartAt))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_at must be a valid RFC3339 timestamp"})
	}

	var endAt *time.Time
	if req.EndAt != nil {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.EndAt))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_at must be a valid RFC3339 timestamp"})
		}
		endAt = &parsed
	}

	detail, err := h.service.CreateSession(c.Context(), services.CreateSessionInput{
		StudentID: req.StudentID,
		TutorID:   req.TutorID,
		StartAt:   startAt,
		EndAt:     endAt,
		Location:  strings.TrimSpace(req.Location),
		Topic:     strings.TrimSpace(req.Topic),
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": detail})
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}

	studentID, _ := strconv.ParseInt(c.Query("student_id"), 10, 64)
	tutorID, _ := strconv.ParseInt(c.Query("tutor_id"), 10, 64)

	sessions, err := h.service.ListSessions(c.Context(), repository.SessionListFilter{
		StudentID: studentID,
		TutorID:   tutorID,
		Status:    strings.TrimSpace(c.Query("status")),
		Timeframe: timeframe,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), sessionID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) ConfirmSession(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.ConfirmSession(c.Context(), sessionID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) SetEndTime(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req setEndTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	endAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndAt))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_at must be a valid RFC3339 timestamp"})
	}

	session, err := h.service.SetEndTime(c.Context(), sessionID, endAt)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func mapBookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrOverlap):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Requested window conflicts with another session"})
	case errors.Is(err, services.ErrState):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrGateway):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment processor unavailable"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process request"})
	}
}
