package notification

import (
	"context"
	"otms/config"
	"otms/infras/mailer"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	KindScheduled   = "scheduled"
	KindRescheduled = "rescheduled"
	KindCancelled   = "cancelled"
)

const (
	defaultQueueSize   = 128
	defaultMaxAttempts = 3
)

// Details carries the booking facts the email templates render.
type Details struct {
	PatientName string
	DoctorName  string
	TheatreName string
	Date        string
	StartTime   string
	EndTime     string
}

type job struct {
	recipient string
	kind      string
	details   Details
	attempts  int
}

// Queue delivers booking emails off the request path. A single worker drains
// jobs serially; a failed delivery goes back to the tail of the queue and is
// dropped for good after maxAttempts tries. Enqueue never blocks and delivery
// failures never reach the scheduling caller.
type Queue struct {
	jobs        chan job
	mailer      mailer.Mailer
	maxAttempts int
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewQueue(cfg *config.Config, mail mailer.Mailer) *Queue {
	size := cfg.Notification.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}

	maxAttempts := cfg.Notification.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Queue{
		jobs:        make(chan job, size),
		mailer:      mail,
		maxAttempts: maxAttempts,
		stop:        make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (q *Queue) Start() {
	q.wg.Add(1)

	go q.run()

	log.Info().Int("max_attempts", q.maxAttempts).Msg("notification queue started")
}

// Stop signals the worker and waits for the in-flight job to finish. Jobs
// still queued are abandoned.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stop)
	})

	q.wg.Wait()

	log.Info().Msg("notification queue stopped")
}

// Enqueue appends a delivery job without blocking. When the recipient has no
// email or the queue is saturated the job is dropped with a log.
func (q *Queue) Enqueue(recipient, kind string, details Details) {
	if recipient == "" {
		log.Warn().Str("kind", kind).Msg("no recipient email, skipping notification")

		return
	}

	q.push(job{recipient: recipient, kind: kind, details: details})
}

func (q *Queue) push(j job) {
	select {
	case q.jobs <- j:
	default:
		log.Error().Str("recipient", j.recipient).Str("kind", j.kind).Msg("notification queue full, dropping job")
	}
}

func (q *Queue) run() {
	defer q.wg.Done()

	for {
		select {
		case <-q.stop:
			return
		case j := <-q.jobs:
			q.process(j)
		}
	}
}

func (q *Queue) process(j job) {
	j.attempts++

	subject, body := render(j.kind, j.details)

	err := q.mailer.Send(context.Background(), j.recipient, subject, body)
	if err == nil {
		return
	}

	if j.attempts >= q.maxAttempts {
		log.Error().Err(err).
			Str("recipient", j.recipient).
			Str("kind", j.kind).
			Int("attempts", j.attempts).
			Msg("notification permanently failed, dropping")

		return
	}

	log.Warn().Err(err).
		Str("recipient", j.recipient).
		Str("kind", j.kind).
		Int("attempt", j.attempts).
		Msg("notification delivery failed, requeueing")

	q.push(j)
}
