package testimonials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/pkg/metrics"
	"github.com/lahiru-voiceai/site/pkg/queue"
	"github.com/lahiru-voiceai/site/pkg/storage"
)

var (
	ErrValidation = errors.New("invalid testimonial")
	ErrUpload     = errors.New("video upload failed")
	ErrWrite      = errors.New("testimonial write failed")
	ErrNotFound   = errors.New("testimonial not found")
)

const excerptLen = 140

// ObjectStore uploads testimonial clips and returns their retrieval URL.
type ObjectStore interface {
	UploadTestimonial(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Store persists testimonial records.
type Store interface {
	Create(ctx context.Context, t *models.Testimonial) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error)
	List(ctx context.Context, filter ListFilter) ([]models.Testimonial, error)
}

// Notifier is told about every created testimonial.
type Notifier interface {
	EnqueueTestimonialSubmitted(ctx context.Context, payload queue.TestimonialSubmittedPayload) error
}

// ListFilter narrows a listing. A nil Status lists every record.
type ListFilter struct {
	Status *models.ReviewStatus
	Limit  int
}

// VideoUpload is the clip part of a video submission.
type VideoUpload struct {
	Body        io.Reader
	Size        int64
	ContentType string
	Ext         string
}

// Submission is one form submission. Text is used only for written
// testimonials and Video only for video ones.
type Submission struct {
	FullName string
	Role     string
	Kind     models.TestimonialKind
	Text     string
	Video    *VideoUpload
}

// Validate checks the submission can be persisted. Name and role may be empty.
func (s Submission) Validate() error {
	switch s.Kind {
	case models.TestimonialWritten:
		if strings.TrimSpace(s.Text) == "" {
			return models.ErrEmptyTestimonialText
		}
	case models.TestimonialVideo:
		if s.Video == nil || s.Video.Body == nil || s.Video.Size <= 0 {
			return errors.New("video testimonial requires a recorded clip")
		}
	default:
		return models.ErrUnknownKind
	}
	return nil
}

// Service runs the two-step submission: upload (video only), then insert.
type Service struct {
	objects  ObjectStore
	store    Store
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
	token    func() (string, error)
}

// NewService creates a testimonial service. objects and notifier may be nil:
// without objects, video submissions fail with ErrUpload.
func NewService(objects ObjectStore, store Store, notifier Notifier, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Service{
		objects:  objects,
		store:    store,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		token:    storage.RandomToken,
	}
}

// Submit validates sub, uploads the clip for video testimonials and then
// creates exactly one pending record. Nothing is retried. If the insert fails
// after a successful upload the object is left in storage.
func (s *Service) Submit(ctx context.Context, sub Submission) (*models.Testimonial, error) {
	kind := string(sub.Kind)
	if err := sub.Validate(); err != nil {
		s.observe(kind, metrics.OutcomeValidationError)
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	var t *models.Testimonial
	switch sub.Kind {
	case models.TestimonialWritten:
		t = models.NewWrittenTestimonial(sub.FullName, sub.Role, sub.Text)
	case models.TestimonialVideo:
		url, key, err := s.upload(ctx, sub.Video)
		if err != nil {
			s.observe(kind, metrics.OutcomeUploadError)
			s.logger.Error("testimonial upload failed", zap.Error(err))
			return nil, err
		}
		t = models.NewVideoTestimonial(sub.FullName, sub.Role, url, key)
	}

	if err := s.store.Create(ctx, t); err != nil {
		s.observe(kind, metrics.OutcomeWriteError)
		if t.VideoKey != "" {
			s.logger.Error("testimonial write failed after upload, object orphaned", zap.Error(err), zap.String("key", t.VideoKey))
		} else {
			s.logger.Error("testimonial write failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	s.observe(kind, metrics.OutcomeSuccess)
	s.logger.Info("testimonial submitted", zap.String("testimonial_id", t.ID.String()), zap.String("kind", kind))
	s.notify(ctx, t)
	return t, nil
}

func (s *Service) upload(ctx context.Context, v *VideoUpload) (url, key string, err error) {
	if s.objects == nil {
		return "", "", fmt.Errorf("%w: object storage not configured", ErrUpload)
	}
	token, err := s.token()
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	ext := v.Ext
	if ext == "" {
		ext = storage.VideoExtension(v.ContentType, "")
	}
	contentType := v.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForExtension(ext)
	}
	key = storage.TestimonialKey(s.now(), token, ext)
	url, err = s.objects.UploadTestimonial(ctx, key, contentType, v.Body, v.Size)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	s.metrics.UploadedBytes.Add(float64(v.Size))
	return url, key, nil
}

func (s *Service) notify(ctx context.Context, t *models.Testimonial) {
	if s.notifier == nil {
		return
	}
	payload := queue.TestimonialSubmittedPayload{
		TestimonialID: t.ID,
		FullName:      t.FullName,
		Role:          t.Role,
		Kind:          string(t.Kind),
		VideoURL:      t.Video(),
	}
	if text := []rune(t.Text()); len(text) > excerptLen {
		payload.Excerpt = string(text[:excerptLen]) + "…"
	} else {
		payload.Excerpt = string(text)
	}
	if err := s.notifier.EnqueueTestimonialSubmitted(ctx, payload); err != nil {
		s.logger.Warn("enqueue testimonial notification failed", zap.Error(err), zap.String("testimonial_id", t.ID.String()))
	}
}

func (s *Service) observe(kind, outcome string) {
	if kind == "" {
		kind = "unknown"
	}
	s.metrics.Submissions.WithLabelValues(kind, outcome).Inc()
}

// ListPublished returns published testimonials, newest first.
func (s *Service) ListPublished(ctx context.Context, limit int) ([]models.Testimonial, error) {
	status := models.ReviewPublished
	return s.store.List(ctx, ListFilter{Status: &status, Limit: limit})
}

// List returns testimonials filtered by status (nil for all), newest first.
func (s *Service) List(ctx context.Context, status *models.ReviewStatus, limit int) ([]models.Testimonial, error) {
	return s.store.List(ctx, ListFilter{Status: status, Limit: limit})
}

// Get returns one testimonial.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	return s.store.GetByID(ctx, id)
}
