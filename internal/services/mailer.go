package services

import (
	"context"
	"ecommerce/internal/logger"
	"ecommerce/internal/utils/helpers"
	"errors"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EmailJob is one HTML email waiting for delivery.
type EmailJob struct {
	To      []string
	Subject string
	Body    string
}

// EmailDeliverer is implemented by EmailService.
type EmailDeliverer interface {
	SendHTML(to []string, subject, body string) error
}

var ErrMailQueueFull = errors.New("mail queue is full")

// MailQueue is a bounded queue of outgoing emails drained by a fixed set of
// workers. Enqueue never blocks.
type MailQueue struct {
	jobs     chan EmailJob
	delivery EmailDeliverer
	wg       sync.WaitGroup
}

func NewMailQueue(delivery EmailDeliverer, size int) *MailQueue {
	if size <= 0 {
		size = 100
	}
	return &MailQueue{jobs: make(chan EmailJob, size), delivery: delivery}
}

func (q *MailQueue) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				if err := q.delivery.SendHTML(job.To, job.Subject, job.Body); err != nil {
					logger.Log.Error("Failed to send email", zap.Strings("to", job.To), zap.String("subject", job.Subject), zap.Error(err))
				}
			}
		}()
	}
}

func (q *MailQueue) Enqueue(job EmailJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrMailQueueFull
	}
}

// Close stops accepting jobs and waits for the workers to drain the queue.
func (q *MailQueue) Close() {
	close(q.jobs)
	q.wg.Wait()
}

// ResetMailer turns (recipient, token) into a reset email and queues it.
type ResetMailer struct {
	queue       *MailQueue
	frontendURL string
	ttl         time.Duration
}

func NewResetMailer(queue *MailQueue, frontendURL string, ttl time.Duration) *ResetMailer {
	return &ResetMailer{queue: queue, frontendURL: frontendURL, ttl: ttl}
}

func (m *ResetMailer) ResetLink(token string) string {
	return m.frontendURL + "/reset-password?token=" + url.QueryEscape(token)
}

func (m *ResetMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.queue.Enqueue(EmailJob{
		To:      []string{to},
		Subject: "Password reset",
		Body:    helpers.BuildPasswordResetHTML(m.ResetLink(token), m.ttl),
	})
}
