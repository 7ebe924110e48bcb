package repository

import (
	"context"

	"github.com/raza141/SchedulerBooker/internal/models"
)

type CreateTutorInput struct {
	FullName     string
	Expertise    string
	HourlyRate   float64
	Email        string
	Phone        string
	Availability *string
}

type TutorRepository struct {
	db DBTX
}

func NewTutorRepository(db DBTX) *TutorRepository {
	return &TutorRepository{db: db}
}

func (r *TutorRepository) Create(ctx context.Context, input CreateTutorInput) (*models.Tutor, error) {
	query := `
		INSERT INTO tutors (full_name, expertise, hourly_rate, email, phone, availability)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, full_name, expertise, hourly_rate, email, phone, availability, status, created_at, updated_at
	`

	var tutor models.Tutor
	err := r.db.QueryRow(ctx, query, input.FullName, input.Expertise, input.HourlyRate, input.Email, input.Phone, input.Availability).Scan(
		&tutor.ID,
		&tutor.FullName,
		&tutor.Expertise,
		&tutor.HourlyRate,
		&tutor.Email,
		&tutor.Phone,
		&tutor.Availability,
		&tutor.Status,
		&tutor.CreatedAt,
		&tutor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tutor, nil
}

func (r *TutorRepository) GetByID(ctx context.Context, tutorID int64) (*models.Tutor, error) {
	query := `
		SELECT id, full_name, expertise, hourly_rate, email, phone, availability, status, created_at, updated_at
		FROM tutors
		WHERE id = $1
	`
	var tutor models.Tutor
	err := r.db.QueryRow(ctx, query, tutorID).Scan(
		&tutor.ID,
		&tutor.FullName,
		&tutor.Expertise,
		&tutor.HourlyRate,
		&tutor.Email,
		&tutor.Phone,
		&tutor.Availability,
		&tutor.Status,
		&tutor.CreatedAt,
		&tutor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tutor, nil
}

func (r *TutorRepository) List(ctx context.Context, limit, offset int) ([]models.Tutor, error) {
	query := `
		SELECT id, full_name, expertise, hourly_rate, email, phone, availability, status, created_at, updated_at
		FROM tutors
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tutors := make([]models.Tutor, 0)
	for rows.Next() {
		var tutor models.Tutor
		if err := rows.Scan(
			&tutor.ID,
			&tutor.FullName,
			&tutor.Expertise,
			&tutor.HourlyRate,
			&tutor.Email,
			&tutor.Phone,
			&tutor.Availability,
			&tutor.Status,
			&tutor.CreatedAt,
			&tutor.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tutors = append(tutors, tutor)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tutors, nil
}

func (r *TutorRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tutors`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *TutorRepository) UpdateStatus(ctx context.Context, tutorID int64, status string) (*models.Tutor, error) {
	query := `
		UPDATE tutors
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, full_name, expertise, hourly_rate, email, phone, availability, status, created_at, updated_at
	`
	var tutor models.Tutor
	err := r.db.QueryRow(ctx, query, tutorID, status).Scan(
		&tutor.ID,
		&tutor.FullName,
		&tutor.Expertise,
		&tutor.HourlyRate,
		&tutor.Email,
		&tutor.Phone,
		&tutor.Availability,
		&tutor.Status,
		&tutor.CreatedAt,
		&tutor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tutor, nil
}
