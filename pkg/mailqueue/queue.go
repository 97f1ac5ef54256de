// Package mailqueue decouples email delivery from request handling. Jobs are
// buffered on a channel and drained by background workers, so a slow mail
// provider never stalls an API response. A job carries domain identifiers,
// not a rendered email: the handler loads the referenced records and renders
// at delivery time.
package mailqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/conectamentor/mentoria-api/pkg/logger"
	"github.com/conectamentor/mentoria-api/pkg/mail"
	"github.com/conectamentor/mentoria-api/pkg/metrics"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when the buffer is saturated. Callers treat this
// as a dropped notification, never as a request failure.
var ErrQueueFull = errors.New("mail queue is full")

// deliverTimeout bounds one handler invocation, retries included
const deliverTimeout = 30 * time.Second

// Job kinds routed by the delivery handler
const (
	KindMentorshipConfirmed = "mentorship_confirmed"
	KindSessionReminder     = "session_reminder"
	KindRequestReceived     = "request_received"
	KindLoginLink           = "login_link"
)

// Job is one queued notification. Domain kinds reference the record by id
// and the handler renders the email when the job is picked up; KindLoginLink
// carries a pre-built Message because the login token never touches the
// database.
type Job struct {
	Kind          string
	MentorshipID  int64
	RequestID     int64
	CorrelationID string
	DispatchID    string
	Message       mail.Message
}

// Handler delivers one job. Invoked by queue workers.
type Handler func(ctx context.Context, job Job) error

// Queue is a bounded in-process mail queue
type Queue struct {
	jobs chan Job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a queue with the given buffer size
func New(size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{
		jobs: make(chan Job, size),
	}
}

// Start launches worker goroutines that drain the queue through the handler
// until Stop is called
func (q *Queue) Start(workers int, handler Handler) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i, handler)
	}
	logger.Info("Mail queue started",
		zap.Int("workers", workers),
		zap.Int("capacity", cap(q.jobs)))
}

// Enqueue adds a job without blocking. A full buffer returns ErrQueueFull.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New("mail queue is stopped")
	}

	select {
	case q.jobs <- job:
		metrics.MailQueueDepth.WithLabelValues().Set(float64(len(q.jobs)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for workers to drain remaining jobs
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	logger.Info("Mail queue stopped")
}

// Depth returns the current number of buffered jobs
func (q *Queue) Depth() int {
	return len(q.jobs)
}

func (q *Queue) worker(id int, handler Handler) {
	defer q.wg.Done()

	for job := range q.jobs {
		metrics.MailQueueDepth.WithLabelValues().Set(float64(len(q.jobs)))

		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		err := handler(ctx, job)
		cancel()

		if err != nil {
			metrics.MailJobsProcessed.WithLabelValues("error").Inc()
			logger.Error("Failed to deliver queued notification",
				zap.Int("worker", id),
				zap.String("kind", job.Kind),
				zap.Int64("mentorship_id", job.MentorshipID),
				zap.String("dispatch_id", job.DispatchID),
				zap.Error(err))
			continue
		}

		metrics.MailJobsProcessed.WithLabelValues("success").Inc()
	}
}
