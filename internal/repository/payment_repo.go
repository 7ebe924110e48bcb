package repository

import (
	"context"
	"time"

	"github.com/raza141/SchedulerBooker/internal/models"
)

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, sessionID int64, amount float64) (*models.Payment, error) {
	query := `
		INSERT INTO payments (session_id, amount, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, session_id, amount, status, paid_at, external_ref, created_at
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query, sessionID, amount).Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.Amount,
		&payment.Status,
		&payment.PaidAt,
		&payment.ExternalRef,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID int64) (*models.Payment, error) {
	query := `
		SELECT id, session_id, amount, status, paid_at, external_ref, created_at
		FROM payments
		WHERE session_id = $1
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.Amount,
		&payment.Status,
		&payment.PaidAt,
		&payment.ExternalRef,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetBySessionIDForUpdate(ctx context.Context, sessionID int64) (*models.Payment, error) {
	query := `
		SELECT id, session_id, amount, status, paid_at, external_ref, created_at
		FROM payments
		WHERE session_id = $1
		FOR UPDATE
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.Amount,
		&payment.Status,
		&payment.PaidAt,
		&payment.ExternalRef,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListBySessionIDs(ctx context.Context, sessionIDs []int64) (map[int64]models.Payment, error) {
	payments := make(map[int64]models.Payment, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return payments, nil
	}

	query := `
		SELECT id, session_id, amount, status, paid_at, external_ref, created_at
		FROM payments
		WHERE session_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, sessionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var payment models.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.SessionID,
			&payment.Amount,
			&payment.Status,
			&payment.PaidAt,
			&payment.ExternalRef,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments[payment.SessionID] = payment
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

// UpdateAmountIfPending reprices a payment that has not settled yet. A paid
// payment never matches, so a settled amount can never be rewritten; callers
// see pgx.ErrNoRows in that case.
func (r *PaymentRepository) UpdateAmountIfPending(ctx context.Context, paymentID int64, amount float64) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET amount = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING id, session_id, amount, status, paid_at, external_ref, created_at
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query, paymentID, amount).Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.Amount,
		&payment.Status,
		&payment.PaidAt,
		&payment.ExternalRef,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkPaidIfPending settles a pending payment, recording the settlement time
// and the processor reference. It matches at most once per payment; a second
// call returns pgx.ErrNoRows and leaves the first settlement untouched.
func (r *PaymentRepository) MarkPaidIfPending(ctx context.Context, paymentID int64, paidAt time.Time, externalRef string) (*models.Payment, error) {
	query := `
		UPDATE payments
		SET status = 'paid', paid_at = $2, external_ref = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING id, session_id, amount, status, paid_at, external_ref, created_at
	`

	var payment models.Payment
	err := r.db.QueryRow(ctx, query, paymentID, paidAt, externalRef).Scan(
		&payment.ID,
		&payment.SessionID,
		&payment.Amount,
		&payment.Status,
		&payment.PaidAt,
		&payment.ExternalRef,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
