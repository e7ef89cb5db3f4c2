package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lahiru-voiceai/site/pkg/queue"
)

const dequeueTimeout = 5 * time.Second

// Jobs is the queue the processor consumes.
type Jobs interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// Notification is the JSON body posted to the webhook.
type Notification struct {
	Type    queue.JobType   `json:"type"`
	Text    string          `json:"text"`
	Link    string          `json:"link,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// NotificationProcessor forwards new-submission jobs to a webhook (Slack-style
// incoming webhooks accept the text field).
type NotificationProcessor struct {
	webhookURL string
	baseURL    string
	client     *http.Client
	jobs       Jobs
	logger     *zap.Logger
	backoff    time.Duration
}

// NewNotificationProcessor creates a notification processor. An empty
// webhookURL makes every job a logged no-op.
func NewNotificationProcessor(webhookURL, baseURL string, jobs Jobs, logger *zap.Logger) *NotificationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationProcessor{
		webhookURL: webhookURL,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		jobs:       jobs,
		logger:     logger,
		backoff:    queue.RetryBackoff,
	}
}

// Process executes one notification job.
func (p *NotificationProcessor) Process(ctx context.Context, job *queue.Job) error {
	n, err := p.render(job)
	if err != nil {
		return err
	}
	if p.webhookURL == "" {
		p.logger.Info("notification (no webhook configured)", zap.String("job_id", job.ID), zap.String("text", n.Text))
		return nil
	}
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status: %d", resp.StatusCode)
	}
	p.logger.Info("notification delivered", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	return nil
}

func (p *NotificationProcessor) render(job *queue.Job) (*Notification, error) {
	n := &Notification{Type: job.Type, Payload: job.Payload}
	switch job.Type {
	case queue.JobTypeTestimonialSubmitted:
		var payload queue.TestimonialSubmittedPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		who := payload.FullName
		if who == "" {
			who = "Anonymous"
		}
		if payload.Role != "" {
			who += " (" + payload.Role + ")"
		}
		if payload.Kind == "video" {
			n.Text = fmt.Sprintf("New video testimonial from %s awaiting review", who)
			n.Link = payload.VideoURL
		} else {
			n.Text = fmt.Sprintf("New written testimonial from %s awaiting review: %q", who, payload.Excerpt)
		}
		if n.Link == "" && p.baseURL != "" {
			n.Link = p.baseURL + "/api/admin/testimonials?status=pending"
		}
	case queue.JobTypeContactReceived:
		var payload queue.ContactReceivedPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		n.Text = fmt.Sprintf("New contact message from %s <%s>: %s", payload.Name, payload.Email, payload.Message)
	default:
		return nil, fmt.Errorf("unknown job type: %s", job.Type)
	}
	return n, nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *NotificationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.jobs.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *NotificationProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
