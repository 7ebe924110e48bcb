package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/raza141/SchedulerBooker/internal/models"
	"github.com/raza141/SchedulerBooker/internal/services"
)

type PaymentHandler struct {
	service paymentApplicationService
}

type paymentApplicationService interface {
	GetSessionPayment(ctx context.Context, sessionID int64) (*models.Payment, error)
	SettleSession(ctx context.Context, sessionID int64) (*models.Payment, error)
	MarkPaid(ctx context.Context, sessionID int64, paidAt time.Time, externalRef string) (*models.Payment, error)
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type markPaidRequest struct {
	PaidAt      *string `json:"paid_at"`
	ExternalRef string  `json:"external_ref"`
}

func (h *PaymentHandler) GetSessionPayment(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	payment, err := h.service.GetSessionPayment(c.Context(), sessionID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}

func (h *PaymentHandler) SettleSession(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	payment, err := h.service.SettleSession(c.Context(), sessionID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}

// MarkPaid records an out-of-band settlement, e.g. a bank transfer confirmed
// manually, without going through the gateway.
func (h *PaymentHandler) MarkPaid(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || sessionID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req markPaidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.ExternalRef) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "external_ref is required"})
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.PaidAt))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "paid_at must be a valid RFC3339 timestamp"})
		}
		paidAt = parsed
	}

	payment, err := h.service.MarkPaid(c.Context(), sessionID, paidAt, strings.TrimSpace(req.ExternalRef))
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"payment": payment})
}
