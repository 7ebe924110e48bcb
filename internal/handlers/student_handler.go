package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/raza141/SchedulerBooker/internal/models"
	"github.com/raza141/SchedulerBooker/internal/repository"
)

var validate = validator.New()

type studentStore interface {
	Create(ctx context.Context, input repository.CreateStudentInput) (*models.Student, error)
	GetByID(ctx context.Context, studentID int64) (*models.Student, error)
	List(ctx context.Context, limit, offset int) ([]models.Student, error)
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, studentID int64, status string) (*models.Student, error)
	Delete(ctx context.Context, studentID int64) (bool, error)
}

type StudentHandler struct {
	store studentStore
}

func NewStudentHandler(store *repository.StudentRepository) *StudentHandler {
	return &StudentHandler{store: store}
}

type createStudentRequest struct {
	FullName    string  `json:"full_name" validate:"required"`
	BillingRate float64 `json:"billing_rate" validate:"required,gt=0"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       string  `json:"phone"`
	Notes       *string `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req createStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	student, err := h.store.Create(c.Context(), repository.CreateStudentInput{
		FullName:    strings.TrimSpace(req.FullName),
		BillingRate: req.BillingRate,
		Email:       req.Email,
		Phone:       strings.TrimSpace(req.Phone),
		Notes:       req.Notes,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create student"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	total, err := h.store.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list students"})
	}

	students, err := h.store.List(c.Context(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list students"})
	}

	return c.JSON(fiber.Map{
		"students":   students,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	studentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || studentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	student, err := h.store.GetByID(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch student"})
	}

	return c.JSON(fiber.Map{"student": student})
}

func (h *StudentHandler) UpdateStudentStatus(c *fiber.Ctx) error {
	studentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || studentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != "active" && status != "inactive" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be active or inactive"})
	}

	student, err := h.store.UpdateStatus(c.Context(), studentID, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update student"})
	}

	return c.JSON(fiber.Map{"student": student})
}

// DeleteStudent removes a student and cascades to their sessions and
// payments. Deletion only ever happens through this explicit call.
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	studentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || studentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	deleted, err := h.store.Delete(c.Context(), studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete student"})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
