package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raza141/SchedulerBooker/internal/models"
)

type CreateSessionInput struct {
	StudentID int64
	TutorID   int64
	StartAt   time.Time
	EndAt     *time.Time
	Location  string
	Topic     string
}

type SessionListFilter struct {
	StudentID int64
	TutorID   int64
	Status    string
	Timeframe string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(
	ctx context.Context,
	input CreateSessionInput,
) (*models.Session, error) {
	query := `
		INSERT INTO sessions (student_id, tutor_id, start_at, end_at, location, topic, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, student_id, tutor_id, start_at, end_at, location, topic, status, created_at, updated_at
	`

	var session models.Session
	err := r.db.QueryRow(
		ctx,
		query,
		input.StudentID,
		input.TutorID,
		input.StartAt,
		input.EndAt,
		input.Location,
		input.Topic,
	).Scan(
		&session.ID,
		&session.StudentID,
		&session.TutorID,
		&session.StartAt,
		&session.EndAt,
		&session.Location,
		&session.Topic,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `
		SELECT id, student_id, tutor_id, start_at, end_at, location, topic, status, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`
	var session models.Session
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.StudentID,
		&session.TutorID,
		&session.StartAt,
		&session.EndAt,
		&session.Location,
		&session.Topic,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByIDForUpdate(
	ctx context.Context,
	sessionID int64,
) (*models.Session, error) {
	query := `
		SELECT id, student_id, tutor_id, start_at, end_at, location, topic, status, created_at, updated_at
		FROM sessions
		WHERE id = $1
		FOR UPDATE
	`
	var session models.Session
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.StudentID,
		&session.TutorID,
		&session.StartAt,
		&session.EndAt,
		&session.Location,
		&session.Topic,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.Session, error) {
	args := []any{}
	whereParts := []string{}

	if filter.StudentID > 0 {
		args = append(args, filter.StudentID)
		whereParts = append(whereParts, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.TutorID > 0 {
		args = append(args, filter.TutorID)
		whereParts = append(whereParts, fmt.Sprintf("tutor_id = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "COALESCE(end_at, start_at) > NOW()")
	case "past":
		whereParts = append(whereParts, "COALESCE(end_at, start_at) <= NOW()")
	}

	whereClause := ""
	if len(whereParts) > 0 {
		whereClause = "WHERE " + strings.Join(whereParts, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, student_id, tutor_id, start_at, end_at, location, topic, status, created_at, updated_at
		FROM sessions
		%s
		ORDER BY start_at ASC, id ASC
	`, whereClause)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var session models.Session
		if err := rows.Scan(
			&session.ID,
			&session.StudentID,
			&session.TutorID,
			&session.StartAt,
			&session.EndAt,
			&session.Location,
			&session.Topic,
			&session.Status,
			&session.CreatedAt,
			&session.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	sessionID int64,
	currentStatus string,
	nextStatus string,
) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING id, student_id, tutor_id, start_at, end_at, location, topic, status, created_at, updated_at
	`
	var session models.Session
	err := r.db.QueryRow(ctx, query, sessionID, currentStatus, nextStatus).Scan(
		&session.ID,
		&session.StudentID,
		&session.TutorID,
		&session.StartAt,
		&session.EndAt,
		&session.Location,
		&session.Topic,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) SetEndAt(
	ctx context.Context,
	sessionID int64,
	endAt time.Time,
) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET end_at = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, student_id, tutor_id, start_at, end_at, location, topic, status, created_at, updated_at
	`
	var session models.Session
	err := r.db.QueryRow(ctx, query, sessionID, endAt).Scan(
		&session.ID,
		&session.StudentID,
		&session.TutorID,
		&session.StartAt,
		&session.EndAt,
		&session.Location,
		&session.Topic,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// HasOverlap reports whether the tutor already has a session intersecting the
// half-open window [startAt, endAt). Sessions that merely touch an endpoint
// do not count; sessions with no end time yet cannot be compared and are
// skipped.
func (r *SessionRepository) HasOverlap(
	ctx context.Context,
	tutorID int64,
	startAt time.Time,
	endAt time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE tutor_id = $1
			  AND end_at IS NOT NULL
			  AND start_at < $3
			  AND end_at > $2
		)
	`
	var hasOverlap bool
	if err := r.db.QueryRow(ctx, query, tutorID, startAt, endAt).Scan(&hasOverlap); err != nil {
		return false, err
	}
	return hasOverlap, nil
}

// HasOverlapExcludingSession is the variant used when re-validating an
// existing booking, e.g. after its end time moves.
func (r *SessionRepository) HasOverlapExcludingSession(
	ctx context.Context,
	tutorID int64,
	startAt time.Time,
	endAt time.Time,
	excludedSessionID int64,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE tutor_id = $1
			  AND id <> $4
			  AND end_at IS NOT NULL
			  AND start_at < $3
			  AND end_at > $2
		)
	`
	var hasOverlap bool
	if err := r.db.QueryRow(ctx, query, tutorID, startAt, endAt, excludedSessionID).Scan(&hasOverlap); err != nil {
		return false, err
	}
	return hasOverlap, nil
}
