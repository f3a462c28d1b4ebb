package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saemahesh/webinar-ai/internal/email"
	"github.com/saemahesh/webinar-ai/internal/emaillogs"
	"github.com/saemahesh/webinar-ai/internal/models"
	"github.com/saemahesh/webinar-ai/pkg/queue"
)

// EmailProcessor drains the email queue: log, send, record the outcome.
type EmailProcessor struct {
	logs   *emaillogs.Repository
	sender email.Sender
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(logs *emaillogs.Repository, sender email.Sender, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{logs: logs, sender: sender, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	entry := &models.EmailLog{
		WebinarID: payload.WebinarID,
		Recipient: payload.RecipientEmail,
		Subject:   payload.Subject,
		EmailType: payload.EmailType,
	}
	if payload.AttendeeID != uuid.Nil {
		id := payload.AttendeeID
		entry.AttendeeID = &id
	}
	if err := p.logs.Create(ctx, entry); err != nil {
		p.logger.Warn("create email log failed", zap.Error(err))
	}

	err := p.sender.Send(ctx, email.Message{
		ToEmail:  payload.RecipientEmail,
		Subject:  payload.Subject,
		BodyHTML: payload.BodyHTML,
	})
	if err != nil {
		if entry.ID != uuid.Nil {
			_ = p.logs.MarkFailed(ctx, entry.ID, err.Error())
		}
		return fmt.Errorf("send email: %w", err)
	}
	if entry.ID != uuid.Nil {
		_ = p.logs.MarkSent(ctx, entry.ID)
	}

	p.logger.Info("email sent",
		zap.String("type", payload.EmailType),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
