package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raza141/SchedulerBooker/internal/models"
	"github.com/raza141/SchedulerBooker/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrValidation = errors.New("invalid input")
	ErrOverlap    = errors.New("tutor already booked for this window")
	ErrNotFound   = errors.New("not found")
	ErrState      = errors.New("invalid state transition")
	ErrGateway    = errors.New("payment gateway failure")
)

type studentReader interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
}

type tutorReader interface {
	GetByID(ctx context.Context, id int64) (*models.Tutor, error)
}

type paymentDeriver interface {
	DerivePayment(ctx context.Context, payments *repository.PaymentRepository, session *models.Session, rate float64) (*models.Payment, bool, error)
}

type BookingService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.SessionRepository
	paymentRepo *repository.PaymentRepository
	studentRepo studentReader
	tutorRepo   tutorReader
	payments    paymentDeriver
	logger      *zap.Logger
}

func NewBookingService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	paymentRepo *repository.PaymentRepository,
	studentRepo studentReader,
	tutorRepo tutorReader,
	payments paymentDeriver,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		db:          db,
		sessionRepo: sessionRepo,
		paymentRepo: paymentRepo,
		studentRepo: studentRepo,
		tutorRepo:   tutorRepo,
		payments:    payments,
		logger:      logger,
	}
}

type CreateSessionInput struct {
	StudentID int64
	TutorID   int64
	StartAt   time.Time
	EndAt     *time.Time
	Location  string
	Topic     string
}

func (s *BookingService) CreateSession(
	ctx context.Context,
	input CreateSessionInput,
) (*models.SessionDetail, error) {
	if input.StudentID <= 0 || input.TutorID <= 0 || input.StartAt.IsZero() {
		return nil, ErrValidation
	}
	if input.EndAt != nil && !input.EndAt.After(input.StartAt) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}

	student, err := s.studentRepo.GetByID(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: student %d", ErrNotFound, input.StudentID)
		}
		return nil, err
	}
	if student.Status != "active" {
		return nil, fmt.Errorf("%w: student is inactive", ErrValidation)
	}

	tutor, err := s.tutorRepo.GetByID(ctx, input.TutorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: tutor %d", ErrNotFound, input.TutorID)
		}
		return nil, err
	}
	if tutor.Status != "active" {
		return nil, fmt.Errorf("%w: tutor is inactive", ErrValidation)
	}

	startAt := input.StartAt.UTC()
	var endAt *time.Time
	if input.EndAt != nil {
		utcEnd := input.EndAt.UTC()
		endAt = &utcEnd
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)
	txStudentRepo := repository.NewStudentRepository(tx)

	// Serializes bookings per tutor so two overlapping requests cannot both
	// pass the overlap check before either commits.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.TutorID); err != nil {
		return nil, err
	}

	if endAt != nil {
		hasOverlap, err := txSessionRepo.HasOverlap(ctx, input.TutorID, startAt, *endAt)
		if err != nil {
			return nil, err
		}
		if hasOverlap {
			return nil, ErrOverlap
		}
	}

	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		StudentID: input.StudentID,
		TutorID:   input.TutorID,
		StartAt:   startAt,
		EndAt:     endAt,
		Location:  input.Location,
		Topic:     input.Topic,
	})
	if err != nil {
		return nil, err
	}

	if err := txStudentRepo.IncrementTotalSessions(ctx, input.StudentID); err != nil {
		return nil, err
	}

	var payment *models.Payment
	if session.EndAt != nil {
		payment, _, err = s.payments.DerivePayment(ctx, txPaymentRepo, session, student.BillingRate)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.SessionDetail{
		Session: *session,
		Payment: payment,
	}, nil
}

func (s *BookingService) CheckAvailability(
	ctx context.Context,
	tutorID int64,
	startAt time.Time,
	endAt time.Time,
) (bool, error) {
	if !endAt.After(startAt) {
		return false, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	hasOverlap, err := s.sessionRepo.HasOverlap(ctx, tutorID, startAt.UTC(), endAt.UTC())
	if err != nil {
		return false, err
	}
	return !hasOverlap, nil
}

// ConfirmSession moves a session from pending to confirmed. Confirming twice
// is rejected rather than treated as a no-op, so callers can tell a repeated
// request from a first one.
func (s *BookingService) ConfirmSession(
	ctx context.Context,
	sessionID int64,
) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %d", ErrNotFound, sessionID)
		}
		return nil, err
	}
	if session.Status == "confirmed" {
		return nil, fmt.Errorf("%w: session already confirmed", ErrState)
	}

	updated, err := s.sessionRepo.UpdateStatusIfCurrent(ctx, sessionID, "pending", "confirmed")
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: session already confirmed", ErrState)
		}
		return nil, err
	}
	return s.GetSession(ctx, updated.ID)
}

// SetEndTime records when a session finished and derives its payment inside
// the same transaction. This is the only place a price calculation is
// triggered, so repricing happens exactly once per change of the end time.
func (s *BookingService) SetEndTime(
	ctx context.Context,
	sessionID int64,
	endAt time.Time,
) (*models.SessionDetail, error) {
	endAt = endAt.UTC()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txPaymentRepo := repository.NewPaymentRepository(tx)
	txStudentRepo := repository.NewStudentRepository(tx)

	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %d", ErrNotFound, sessionID)
		}
		return nil, err
	}
	if !endAt.After(session.StartAt) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", session.TutorID); err != nil {
		return nil, err
	}

	hasOverlap, err := txSessionRepo.HasOverlapExcludingSession(ctx, session.TutorID, session.StartAt, endAt, session.ID)
	if err != nil {
		return nil, err
	}
	if hasOverlap {
		return nil, ErrOverlap
	}

	updated, err := txSessionRepo.SetEndAt(ctx, sessionID, endAt)
	if err != nil {
		return nil, err
	}

	student, err := txStudentRepo.GetByID(ctx, updated.StudentID)
	if err != nil {
		return nil, err
	}

	payment, alreadySettled, err := s.payments.DerivePayment(ctx, txPaymentRepo, updated, student.BillingRate)
	if err != nil {
		return nil, err
	}
	if alreadySettled {
		s.logger.Info("payment already settled, amount left unchanged",
			zap.Int64("session_id", updated.ID),
			zap.Int64("payment_id", payment.ID),
		)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.SessionDetail{
		Session: *updated,
		Payment: payment,
	}, nil
}

func (s *BookingService) GetSession(
	ctx context.Context,
	sessionID int64,
) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %d", ErrNotFound, sessionID)
		}
		return nil, err
	}

	detail := &models.SessionDetail{Session: *session}
	payment, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		detail.Payment = payment
	}
	return detail, nil
}

func (s *BookingService) ListSessions(
	ctx context.Context,
	filter repository.SessionListFilter,
) ([]models.SessionDetail, error) {
	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	sessionIDs := make([]int64, 0, len(sessions))
	for _, session := range sessions {
		sessionIDs = append(sessionIDs, session.ID)
	}

	paymentsBySession, err := s.paymentRepo.ListBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.SessionDetail, 0, len(sessions))
	for _, session := range sessions {
		detail := models.SessionDetail{Session: session}
		if payment, ok := paymentsBySession[session.ID]; ok {
			paymentCopy := payment
			detail.Payment = &paymentCopy
		}
		details = append(details, detail)
	}

	return details, nil
}
