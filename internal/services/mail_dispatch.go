package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/conectamentor/mentoria-api/internal/repository"
	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/mail"
	"github.com/conectamentor/mentoria-api/pkg/mailqueue"
)

// MailDispatch implements NotificationDispatcher on top of the mail queue.
// Dispatching enqueues one job carrying the record id plus correlation and
// dispatch ids; Deliver runs on the queue workers, loads the referenced
// records there and renders one email per recipient. Confirmation state is
// read at delivery time, not capture time.
type MailDispatch struct {
	mentorshipRepo repository.MentorshipDataSource
	requestRepo    repository.RequestDataSource
	queue          *mailqueue.Queue
	sender         mail.Sender
	baseURL        string
}

// NewMailDispatch creates the mail-backed notification dispatcher
func NewMailDispatch(
	mentorshipRepo repository.MentorshipDataSource,
	requestRepo repository.RequestDataSource,
	queue *mailqueue.Queue,
	sender mail.Sender,
	baseURL string,
) *MailDispatch {
	return &MailDispatch{
		mentorshipRepo: mentorshipRepo,
		requestRepo:    requestRepo,
		queue:          queue,
		sender:         sender,
		baseURL:        baseURL,
	}
}

// DispatchConfirmation enqueues one confirmation job for the mentorship
func (d *MailDispatch) DispatchConfirmation(ctx context.Context, mentorshipID int64, correlationID, dispatchID string) error {
	err := d.queue.Enqueue(mailqueue.Job{
		Kind:          mailqueue.KindMentorshipConfirmed,
		MentorshipID:  mentorshipID,
		CorrelationID: correlationID,
		DispatchID:    dispatchID,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue confirmation job: %w", err)
	}
	return nil
}

// DispatchReminder enqueues one reminder job for the mentorship
func (d *MailDispatch) DispatchReminder(ctx context.Context, mentorshipID int64) error {
	err := d.queue.Enqueue(mailqueue.Job{
		Kind:         mailqueue.KindSessionReminder,
		MentorshipID: mentorshipID,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder job: %w", err)
	}
	return nil
}

// DispatchRequestReceived enqueues an intake acknowledgment job
func (d *MailDispatch) DispatchRequestReceived(ctx context.Context, requestID int64) error {
	err := d.queue.Enqueue(mailqueue.Job{
		Kind:      mailqueue.KindRequestReceived,
		RequestID: requestID,
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue request acknowledgment job: %w", err)
	}
	return nil
}

// Deliver is the queue handler: it resolves a job into emails and sends them
func (d *MailDispatch) Deliver(ctx context.Context, job mailqueue.Job) error {
	switch job.Kind {
	case mailqueue.KindMentorshipConfirmed:
		return d.deliverConfirmation(ctx, job)
	case mailqueue.KindSessionReminder:
		return d.deliverReminder(ctx, job)
	case mailqueue.KindRequestReceived:
		return d.deliverRequestReceived(ctx, job)
	default:
		if job.Message.ToEmail == "" {
			return fmt.Errorf("unknown mail job kind %q", job.Kind)
		}
		return d.sender.Send(ctx, job.Message)
	}
}

func (d *MailDispatch) deliverConfirmation(ctx context.Context, job mailqueue.Job) error {
	mentorship, err := d.mentorshipRepo.GetByID(ctx, job.MentorshipID)
	if err != nil {
		return fmt.Errorf("failed to load mentorship %d: %w", job.MentorshipID, err)
	}
	parties, err := d.mentorshipRepo.GetParties(ctx, job.MentorshipID)
	if err != nil {
		return fmt.Errorf("failed to load mentorship parties: %w", err)
	}

	when := mentorship.ScheduledAt.Format("02-01-2006 15:04 MST")

	studentMsg := mail.Message{
		ToEmail: parties.Student.Email,
		ToName:  parties.Student.Name,
		Subject: "Tu mentoría fue confirmada",
		HTMLContent: fmt.Sprintf(
			"<p>Hola %s,</p><p>%s confirmó tu mentoría \"%s\" para el %s (%d minutos).</p><p>Únete aquí: <a href=\"%s\">%s</a></p>",
			parties.Student.Name, parties.Mentor.Name, mentorship.Topic,
			when, mentorship.DurationMinutes, mentorship.JoinURL, mentorship.JoinURL),
	}
	mentorMsg := mail.Message{
		ToEmail: parties.Mentor.Email,
		ToName:  parties.Mentor.Name,
		Subject: fmt.Sprintf("Mentoría confirmada con %s", parties.Student.Name),
		HTMLContent: fmt.Sprintf(
			"<p>Hola %s,</p><p>Confirmaste la mentoría \"%s\" con %s para el %s (%d minutos).</p><p>Inicia la sesión aquí: <a href=\"%s\">enlace de anfitrión</a></p>",
			parties.Mentor.Name, mentorship.Topic, parties.Student.Name,
			when, mentorship.DurationMinutes, mentorship.StartURL),
	}

	if err := d.sender.Send(ctx, studentMsg); err != nil {
		return fmt.Errorf("failed to send student confirmation: %w", err)
	}
	if err := d.sender.Send(ctx, mentorMsg); err != nil {
		return fmt.Errorf("failed to send mentor confirmation: %w", err)
	}

	logger.Info("Confirmation emails delivered",
		zap.Int64("mentorship_id", job.MentorshipID),
		zap.String("correlation_id", job.CorrelationID),
		zap.String("dispatch_id", job.DispatchID))
	return nil
}

func (d *MailDispatch) deliverReminder(ctx context.Context, job mailqueue.Job) error {
	mentorship, err := d.mentorshipRepo.GetByID(ctx, job.MentorshipID)
	if err != nil {
		return fmt.Errorf("failed to load mentorship %d: %w", job.MentorshipID, err)
	}
	parties, err := d.mentorshipRepo.GetParties(ctx, job.MentorshipID)
	if err != nil {
		return fmt.Errorf("failed to load mentorship parties: %w", err)
	}

	when := mentorship.ScheduledAt.Format("15:04 MST")

	for _, rcpt := range []struct {
		email, name, link string
	}{
		{parties.Student.Email, parties.Student.Name, mentorship.JoinURL},
		{parties.Mentor.Email, parties.Mentor.Name, mentorship.StartURL},
	} {
		msg := mail.Message{
			ToEmail: rcpt.email,
			ToName:  rcpt.name,
			Subject: "Recordatorio: tu mentoría comienza pronto",
			HTMLContent: fmt.Sprintf(
				"<p>Hola %s,</p><p>Tu mentoría \"%s\" comienza hoy a las %s.</p><p><a href=\"%s\">Unirse a la sesión</a></p>",
				rcpt.name, mentorship.Topic, when, rcpt.link),
		}
		if err := d.sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("failed to send reminder: %w", err)
		}
	}

	return nil
}

func (d *MailDispatch) deliverRequestReceived(ctx context.Context, job mailqueue.Job) error {
	request, err := d.requestRepo.GetByID(ctx, job.RequestID)
	if err != nil {
		return fmt.Errorf("failed to load request %d: %w", job.RequestID, err)
	}

	msg := mail.Message{
		ToEmail: request.StudentEmail,
		ToName:  request.StudentName,
		Subject: "Recibimos tu solicitud de mentoría",
		HTMLContent: fmt.Sprintf(
			"<p>Hola %s,</p><p>Tu solicitud de mentoría fue enviada. El mentor la revisará pronto.</p><p><a href=\"%s\">Ver la plataforma</a></p>",
			request.StudentName, d.baseURL),
	}
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send request acknowledgment: %w", err)
	}

	return nil
}

var _ NotificationDispatcher = (*MailDispatch)(nil)
