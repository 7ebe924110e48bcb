package models

import "time"

type Tutor struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Expertise    string    `json:"expertise"`
	HourlyRate   float64   `json:"hourly_rate"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Availability *string   `json:"availability,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
