package mailqueue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu      sync.Mutex
	handled []Job
	block   chan struct{}
}

func (h *recordingHandler) handle(ctx context.Context, job Job) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, job)
	return nil
}

func (h *recordingHandler) jobs() []Job {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Job(nil), h.handled...)
}

func TestQueueDeliversJobs(t *testing.T) {
	handler := &recordingHandler{}
	queue := New(8)
	queue.Start(2, handler.handle)

	err := queue.Enqueue(Job{
		Kind:          KindMentorshipConfirmed,
		MentorshipID:  91,
		CorrelationID: "corr-1",
		DispatchID:    "disp-1",
	})
	require.NoError(t, err)

	queue.Stop()

	jobs := handler.jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, int64(91), jobs[0].MentorshipID)
	assert.Equal(t, "corr-1", jobs[0].CorrelationID)
	assert.Equal(t, "disp-1", jobs[0].DispatchID)
}

func TestQueueFullReturnsError(t *testing.T) {
	queue := New(1)
	// No workers started: the single buffer slot fills immediately

	require.NoError(t, queue.Enqueue(Job{Kind: KindSessionReminder, MentorshipID: 1}))
	assert.Equal(t, 1, queue.Depth())
	err := queue.Enqueue(Job{Kind: KindSessionReminder, MentorshipID: 2})
	assert.ErrorIs(t, err, ErrQueueFull)

	handler := &recordingHandler{}
	queue.Start(1, handler.handle)
	queue.Stop()
}

func TestQueueRejectsAfterStop(t *testing.T) {
	handler := &recordingHandler{}
	queue := New(4)
	queue.Start(1, handler.handle)
	queue.Stop()

	err := queue.Enqueue(Job{Kind: KindRequestReceived, RequestID: 5})
	require.Error(t, err)
}

func TestQueueDrainsOnStop(t *testing.T) {
	handler := &recordingHandler{}
	queue := New(16)

	for i := 0; i < 10; i++ {
		require.NoError(t, queue.Enqueue(Job{Kind: KindSessionReminder, MentorshipID: int64(i)}))
	}

	queue.Start(3, handler.handle)

	done := make(chan struct{})
	go func() {
		queue.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queue did not drain in time")
	}

	assert.Len(t, handler.jobs(), 10)
}
