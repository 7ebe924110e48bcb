package models

import "time"

type Session struct {
	ID        int64      `json:"id"`
	StudentID int64      `json:"student_id"`
	TutorID   int64      `json:"tutor_id"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	Location  string     `json:"location"`
	Topic     string     `json:"topic"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Payment struct {
	ID          int64      `json:"id"`
	SessionID   int64      `json:"session_id"`
	Amount      float64    `json:"amount"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ExternalRef *string    `json:"external_ref,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SessionDetail struct {
	Session
	Payment *Payment `json:"payment,omitempty"`
}
