package models

import "time"

type Student struct {
	ID            int64     `json:"id"`
	FullName      string    `json:"full_name"`
	BillingRate   float64   `json:"billing_rate"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	JoinDate      time.Time `json:"join_date"`
	Status        string    `json:"status"`
	TotalSessions int       `json:"total_sessions"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
