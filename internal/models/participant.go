package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// Mentor is a platform mentor
type Mentor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Job       string    `json:"job"`
	Workplace string    `json:"workplace"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Student is a platform student ("aprendiz")
type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// MentorshipParties are the two sides of a mentorship, loaded for
// notification delivery.
type MentorshipParties struct {
	Mentor  Mentor
	Student Student
}

// ScanMentor scans a row into a Mentor.
// Expected columns: id, name, email, job, workplace, is_active, created_at.
func ScanMentor(row pgx.Row) (*Mentor, error) {
	var m Mentor
	var job, workplace *string

	err := row.Scan(&m.ID, &m.Name, &m.Email, &job, &workplace, &m.IsActive, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if job != nil {
		m.Job = *job
	}
	if workplace != nil {
		m.Workplace = *workplace
	}
	return &m, nil
}
