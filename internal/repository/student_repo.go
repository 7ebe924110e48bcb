package repository

import (
	"context"

	"github.com/raza141/SchedulerBooker/internal/models"
)

type CreateStudentInput struct {
	FullName    string
	BillingRate float64
	Email       string
	Phone       string
	Notes       *string
}

type StudentRepository struct {
	db DBTX
}

func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Create(ctx context.Context, input CreateStudentInput) (*models.Student, error) {
	query := `
		INSERT INTO students (full_name, billing_rate, email, phone, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, full_name, billing_rate, email, phone, join_date, status, total_sessions, notes, created_at, updated_at
	`

	var student models.Student
	err := r.db.QueryRow(ctx, query, input.FullName, input.BillingRate, input.Email, input.Phone, input.Notes).Scan(
		&student.ID,
		&student.FullName,
		&student.BillingRate,
		&student.Email,
		&student.Phone,
		&student.JoinDate,
		&student.Status,
		&student.TotalSessions,
		&student.Notes,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, studentID int64) (*models.Student, error) {
	query := `
		SELECT id, full_name, billing_rate, email, phone, join_date, status, total_sessions, notes, created_at, updated_at
		FROM students
		WHERE id = $1
	`
	var student models.Student
	err := r.db.QueryRow(ctx, query, studentID).Scan(
		&student.ID,
		&student.FullName,
		&student.BillingRate,
		&student.Email,
		&student.Phone,
		&student.JoinDate,
		&student.Status,
		&student.TotalSessions,
		&student.Notes,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) List(ctx context.Context, limit, offset int) ([]models.Student, error) {
	query := `
		SELECT id, full_name, billing_rate, email, phone, join_date, status, total_sessions, notes, created_at, updated_at
		FROM students
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]models.Student, 0)
	for rows.Next() {
		var student models.Student
		if err := rows.Scan(
			&student.ID,
			&student.FullName,
			&student.BillingRate,
			&student.Email,
			&student.Phone,
			&student.JoinDate,
			&student.Status,
			&student.TotalSessions,
			&student.Notes,
			&student.CreatedAt,
			&student.UpdatedAt,
		); err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *StudentRepository) UpdateStatus(ctx context.Context, studentID int64, status string) (*models.Student, error) {
	query := `
		UPDATE students
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, full_name, billing_rate, email, phone, join_date, status, total_sessions, notes, created_at, updated_at
	`
	var student models.Student
	err := r.db.QueryRow(ctx, query, studentID, status).Scan(
		&student.ID,
		&student.FullName,
		&student.BillingRate,
		&student.Email,
		&student.Phone,
		&student.JoinDate,
		&student.Status,
		&student.TotalSessions,
		&student.Notes,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// IncrementTotalSessions keeps the denormalized booking counter in step with
// session inserts. Call it inside the same transaction as the insert.
func (r *StudentRepository) IncrementTotalSessions(ctx context.Context, studentID int64) error {
	query := `
		UPDATE students
		SET total_sessions = total_sessions + 1, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, studentID)
	return err
}

// Delete removes the student and, through the schema's cascade rules, every
// session and payment that references them.
func (r *StudentRepository) Delete(ctx context.Context, studentID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, studentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
