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

type PaymentService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.SessionRepository
	paymentRepo *repository.PaymentRepository
	gateway     PaymentGateway
	currency    string
	timeout     time.Duration
	logger      *zap.Logger
}

func NewPaymentService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	paymentRepo *repository.PaymentRepository,
	gateway PaymentGateway,
	currency string,
	timeout time.Duration,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		db:          db,
		sessionRepo: sessionRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		currency:    currency,
		timeout:     timeout,
		logger:      logger,
	}
}

// DerivePayment prices a session from its window and the student's billing
// rate, creating the payment row on first use and repricing it while it is
// still pending. A settled payment is never touched; the second return value
// reports that outcome so the caller can log and move on.
func (s *PaymentService) DerivePayment(
	ctx context.Context,
	payments *repository.PaymentRepository,
	session *models.Session,
	rate float64,
) (*models.Payment, bool, error) {
	if session.EndAt == nil {
		return nil, false, fmt.Errorf("%w: session has no end time", ErrValidation)
	}
	amount := sessionAmount(session.StartAt, *session.EndAt, rate)

	existing, err := payments.GetBySessionID(ctx, session.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			created, err := payments.Create(ctx, session.ID, amount)
			if err != nil {
				return nil, false, err
			}
			return created, false, nil
		}
		return nil, false, err
	}
	if existing.Status == "paid" {
		return existing, true, nil
	}

	updated, err := payments.UpdateAmountIfPending(ctx, existing.ID, amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Settled between the read and the update.
			settled, getErr := payments.GetBySessionID(ctx, session.ID)
			if getErr != nil {
				return nil, false, getErr
			}
			return settled, true, nil
		}
		return nil, false, err
	}
	return updated, false, nil
}

// SettleSession submits the session's pending payment to the gateway and, on
// success, marks it paid with the processor's reference. The gateway call
// runs outside any database transaction or lock so a slow processor cannot
// block unrelated bookings; on failure the payment stays pending and the
// caller may retry.
func (s *PaymentService) SettleSession(ctx context.Context, sessionID int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no payment for session %d", ErrNotFound, sessionID)
		}
		return nil, err
	}
	if payment.Status == "paid" {
		return nil, fmt.Errorf("%w: payment already settled", ErrState)
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	externalRef, err := s.gateway.SubmitPayment(gatewayCtx, amountMinorUnits(payment.Amount), s.currency)
	if err != nil {
		s.logger.Warn("payment settlement failed, payment stays pending",
			zap.Int64("session_id", sessionID),
			zap.Int64("payment_id", payment.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	settled, err := s.MarkPaid(ctx, sessionID, time.Now().UTC(), externalRef)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment settled",
		zap.Int64("session_id", sessionID),
		zap.Int64("payment_id", settled.ID),
		zap.Float64("amount", settled.Amount),
		zap.String("external_ref", externalRef),
	)
	return settled, nil
}

// MarkPaid finalizes a pending payment. The first call wins; any later call
// fails with ErrState and the original settlement timestamp and reference
// are retained.
func (s *PaymentService) MarkPaid(
	ctx context.Context,
	sessionID int64,
	paidAt time.Time,
	externalRef string,
) (*models.Payment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txPaymentRepo := repository.NewPaymentRepository(tx)

	payment, err := txPaymentRepo.GetBySessionIDForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no payment for session %d", ErrNotFound, sessionID)
		}
		return nil, err
	}
	if payment.Status == "paid" {
		return nil, fmt.Errorf("%w: payment already settled", ErrState)
	}

	settled, err := txPaymentRepo.MarkPaidIfPending(ctx, payment.ID, paidAt.UTC(), externalRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment already settled", ErrState)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return settled, nil
}

func (s *PaymentService) GetSessionPayment(ctx context.Context, sessionID int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no payment for session %d", ErrNotFound, sessionID)
		}
		return nil, err
	}
	return payment, nil
}
