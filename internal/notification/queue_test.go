package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"otms/config"
	"otms/infras/mailer/mocks"
	"otms/internal/notification"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func queueConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Notification.QueueSize = 16
	cfg.Notification.MaxAttempts = 3

	return cfg
}

func details() notification.Details {
	return notification.Details{
		PatientName: "Jane Roe",
		DoctorName:  "Dr. Salim",
		TheatreName: "OT-1",
		Date:        "2026-03-14",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}
}

func TestQueue_DeliversScheduledEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mail := mocks.NewMockMailer(ctrl)
	queue := notification.NewQueue(queueConfig(), mail)

	sent := make(chan string, 1)

	mail.EXPECT().
		Send(gomock.Any(), "jane@example.com", "Surgery Scheduled", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, subject, body string) error {
			assert.Contains(t, body, "Jane Roe")
			assert.Contains(t, body, "Dr. Salim")
			assert.Contains(t, body, "OT-1")
			sent <- subject

			return nil
		})

	queue.Start()
	defer queue.Stop()

	queue.Enqueue("jane@example.com", notification.KindScheduled, details())

	select {
	case subject := <-sent:
		assert.Equal(t, "Surgery Scheduled", subject)
	case <-time.After(2 * time.Second):
		t.Fatal("expected email to be delivered")
	}
}

func TestQueue_RetriesThenSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mail := mocks.NewMockMailer(ctrl)
	queue := notification.NewQueue(queueConfig(), mail)

	attempts := 0
	delivered := make(chan struct{})

	mail.EXPECT().
		Send(gomock.Any(), "jane@example.com", "Surgery Rescheduled", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, _ string) error {
			attempts++
			if attempts < 3 {
				return errors.New("provider unavailable")
			}

			close(delivered)

			return nil
		}).
		Times(3)

	queue.Start()
	defer queue.Stop()

	queue.Enqueue("jane@example.com", notification.KindRescheduled, details())

	select {
	case <-delivered:
		assert.Equal(t, 3, attempts, "expected delivery on the third attempt")
	case <-time.After(2 * time.Second):
		t.Fatal("expected email to be delivered after retries")
	}
}

func TestQueue_DropsAfterMaxAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mail := mocks.NewMockMailer(ctrl)
	queue := notification.NewQueue(queueConfig(), mail)

	third := make(chan struct{})
	attempts := 0

	mail.EXPECT().
		Send(gomock.Any(), "jane@example.com", "Surgery Cancelled", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _, _ string) error {
			attempts++
			if attempts == 3 {
				close(third)
			}

			return errors.New("provider unavailable")
		}).
		Times(3)

	queue.Start()

	queue.Enqueue("jane@example.com", notification.KindCancelled, details())

	select {
	case <-third:
	case <-time.After(2 * time.Second):
		t.Fatal("expected three delivery attempts")
	}

	// Let any wrongly requeued job surface before the mock controller
	// verifies the call count.
	time.Sleep(100 * time.Millisecond)
	queue.Stop()
}

func TestQueue_SkipsEmptyRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mail := mocks.NewMockMailer(ctrl)
	queue := notification.NewQueue(queueConfig(), mail)

	queue.Start()

	// No Send expectation: any delivery attempt fails the test.
	queue.Enqueue("", notification.KindScheduled, details())

	time.Sleep(50 * time.Millisecond)
	queue.Stop()
}

func TestQueue_EnqueueDoesNotBlockWhenFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mail := mocks.NewMockMailer(ctrl)

	cfg := &config.Config{}
	cfg.Notification.QueueSize = 1
	cfg.Notification.MaxAttempts = 3

	// Worker never started, so the buffer stays full after the first job.
	queue := notification.NewQueue(cfg, mail)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for range 10 {
			queue.Enqueue("jane@example.com", notification.KindScheduled, details())
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}
