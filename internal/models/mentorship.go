package models

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Schedule bounds for a mentorship session, in minutes
const (
	MinSessionMinutes = 30
	MaxSessionMinutes = 180
)

// MentorshipStatus represents the status of a confirmed mentorship
type MentorshipStatus string

const (
	MentorshipScheduled MentorshipStatus = "scheduled"
	MentorshipCancelled MentorshipStatus = "cancelled"
)

// Mentorship is a confirmed mentorship with its provisioned meeting.
// ScheduledAt is always stored in UTC.
type Mentorship struct {
	ID              int64            `json:"id"`
	RequestID       int64            `json:"requestId"`
	MentorID        int64            `json:"mentorId"`
	StudentID       int64            `json:"studentId"`
	MeetingID       int64            `json:"meetingId"`
	JoinURL         string           `json:"joinUrl"`
	StartURL        string           `json:"startUrl,omitempty"`
	MeetingPassword string           `json:"meetingPassword,omitempty"`
	ScheduledAt     time.Time        `json:"scheduledAt"`
	DurationMinutes int              `json:"durationMinutes"`
	Topic           string           `json:"topic"`
	Status          MentorshipStatus `json:"status"`
	CreatedAt       time.Time        `json:"createdAt"`
	ModifiedAt      time.Time        `json:"modifiedAt"`
}

// ConfirmSchedulePayload is the mentor's confirmation input. Field names
// follow the product's Spanish API surface.
type ConfirmSchedulePayload struct {
	Fecha           string `json:"fecha" binding:"required"`
	Hora            string `json:"hora" binding:"required"`
	DuracionMinutos int    `json:"duracion_minutos" binding:"required,min=30,max=180"`
	Topic           string `json:"topic" binding:"max=200"`
	Timezone        string `json:"timezone"`
}

// ResolveStart parses fecha+hora in the payload's timezone (or defaultTZ when
// absent) and returns the schedule instant plus the resolved location.
func (p *ConfirmSchedulePayload) ResolveStart(defaultTZ string) (time.Time, *time.Location, error) {
	tz := p.Timezone
	if tz == "" {
		tz = defaultTZ
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("unknown timezone %q", tz)
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", p.Fecha+" "+p.Hora, loc)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("invalid schedule: fecha must be YYYY-MM-DD and hora HH:MM")
	}

	return start, loc, nil
}

// ReschedulePayload carries a new schedule for an existing mentorship
type ReschedulePayload struct {
	Fecha           string `json:"fecha" binding:"required"`
	Hora            string `json:"hora" binding:"required"`
	DuracionMinutos int    `json:"duracion_minutos" binding:"required,min=30,max=180"`
	Timezone        string `json:"timezone"`
}

// ToConfirmPayload reuses the confirmation schedule resolution
func (p *ReschedulePayload) ToConfirmPayload() *ConfirmSchedulePayload {
	return &ConfirmSchedulePayload{
		Fecha:           p.Fecha,
		Hora:            p.Hora,
		DuracionMinutos: p.DuracionMinutos,
		Timezone:        p.Timezone,
	}
}

// ScanMentorship scans a row into a Mentorship.
// Expected columns: id, request_id, mentor_id, student_id, meeting_id,
// join_url, start_url, meeting_password, scheduled_at, duration_minutes,
// topic, status, created_at, updated_at.
func ScanMentorship(row pgx.Row) (*Mentorship, error) {
	var m Mentorship
	var startURL *string
	var password *string
	var topic *string

	err := row.Scan(
		&m.ID,
		&m.RequestID,
		&m.MentorID,
		&m.StudentID,
		&m.MeetingID,
		&m.JoinURL,
		&startURL,
		&password,
		&m.ScheduledAt,
		&m.DurationMinutes,
		&topic,
		&m.Status,
		&m.CreatedAt,
		&m.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if startURL != nil {
		m.StartURL = *startURL
	}
	if password != nil {
		m.MeetingPassword = *password
	}
	if topic != nil {
		m.Topic = *topic
	}
	m.ScheduledAt = m.ScheduledAt.UTC()

	return &m, nil
}
