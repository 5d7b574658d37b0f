package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"academy_backend/internal/email"
	"academy_backend/internal/logger"
	"academy_backend/internal/repositories"
	"academy_backend/internal/tenant"
	"academy_backend/internal/vault"
)

const maxDeliveryAttempts = 3

// EmailWorker drains the queue and delivers email tasks. Per-tenant SMTP
// settings win; the process-wide fallback covers tenants without their
// own server. Repeated delivery of the same task is harmless to application
// state, so failed sends are simply retried with backoff.
type EmailWorker struct {
	queue     Queue
	sites     repositories.SiteRepository
	cipher    *vault.Cipher
	templates *email.TemplateManager
	sender    email.Sender
	fallback  email.SMTPSettings
	workers   int

	// sleep is swappable in tests.
	sleep func(time.Duration)
}

func NewEmailWorker(
	queue Queue,
	sites repositories.SiteRepository,
	cipher *vault.Cipher,
	templates *email.TemplateManager,
	sender email.Sender,
	fallback email.SMTPSettings,
	workers int,
) *EmailWorker {
	if workers <= 0 {
		workers = 2
	}
	return &EmailWorker{
		queue:     queue,
		sites:     sites,
		cipher:    cipher,
		templates: templates,
		sender:    sender,
		fallback:  fallback,
		workers:   workers,
		sleep:     time.Sleep,
	}
}

// Run blocks until the context is cancelled or the queue closes.
func (w *EmailWorker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (w *EmailWorker) loop(ctx context.Context, id int) {
	logger.Info("Email worker started", "worker_id", id)
	for {
		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			logger.Info("Email worker stopped", "worker_id", id, "reason", err.Error())
			return
		}
		if err := w.Handle(ctx, task); err != nil {
			logger.Error("Email task failed permanently",
				"task_id", task.ID,
				"error", err,
			)
		}
	}
}

// Handle processes one task, retrying transient send failures up to
// maxDeliveryAttempts with exponential backoff.
func (w *EmailWorker) Handle(ctx context.Context, task Task) error {
	if task.Type != TypeEmail {
		return fmt.Errorf("unknown task type: %s", task.Type)
	}

	var payload EmailPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email payload: %w", err)
	}

	msg, smtp, err := w.prepare(ctx, payload)
	if err != nil {
		return err
	}

	backoff := time.Second
	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		err = w.sender.Send(smtp, msg)
		if err == nil {
			logger.Info("Email sent",
				"task_id", task.ID,
				"template", payload.Template,
				"to", vault.Mask(payload.To, 3),
			)
			return nil
		}
		logger.Warn("Email delivery attempt failed",
			"task_id", task.ID,
			"attempt", attempt,
			"error", err,
		)
		if attempt < maxDeliveryAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			w.sleep(backoff)
			backoff *= 2
		}
	}
	return fmt.Errorf("delivery failed after %d attempts: %w", maxDeliveryAttempts, err)
}

// prepare resolves SMTP settings and renders the message body.
func (w *EmailWorker) prepare(ctx context.Context, payload EmailPayload) (email.Message, email.SMTPSettings, error) {
	smtp := w.fallback

	if payload.SiteID != "" && w.sites != nil {
		site, err := w.sites.FindByID(ctx, payload.SiteID)
		if err == nil {
			cfg := tenant.NewSettings(site, w.cipher).SMTP()
			if cfg.Configured() {
				smtp = email.SMTPSettings{
					Host:      cfg.Host,
					Port:      cfg.Port,
					Username:  cfg.Username,
					Password:  cfg.Password,
					FromEmail: cfg.FromEmail,
					FromName:  cfg.FromName,
				}
			}
		} else {
			logger.Warn("Email task references unknown site, using fallback SMTP",
				"site_id", payload.SiteID,
			)
		}
	}

	if !smtp.Configured() {
		return email.Message{}, email.SMTPSettings{}, fmt.Errorf("no smtp configuration available for site %q", payload.SiteID)
	}

	body, err := w.templates.Render(payload.Template, payload.Context)
	if err != nil {
		return email.Message{}, email.SMTPSettings{}, err
	}

	return email.Message{
		To:       payload.To,
		ToName:   payload.ToName,
		Subject:  payload.Subject,
		HTMLBody: body,
	}, smtp, nil
}
