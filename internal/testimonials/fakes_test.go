package testimonials

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/pkg/queue"
)

// callLog records the order of collaborator calls across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeObjects struct {
	log         *callLog
	err         error
	keys        []string
	contentType string
	data        []byte
}

func (f *fakeObjects) UploadTestimonial(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	f.log.add("upload")
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	f.contentType = contentType
	f.data = b
	return "https://cdn.example.com/" + key, nil
}

type fakeStore struct {
	log     *callLog
	err     error
	created []*models.Testimonial
	listed  []ListFilter
	byID    map[uuid.UUID]*models.Testimonial
}

func (f *fakeStore) Create(ctx context.Context, t *models.Testimonial) error {
	f.log.add("insert")
	if f.err != nil {
		return f.err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	f.created = append(f.created, t)
	if f.byID == nil {
		f.byID = map[uuid.UUID]*models.Testimonial{}
	}
	f.byID[t.ID] = t
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) List(ctx context.Context, filter ListFilter) ([]models.Testimonial, error) {
	f.listed = append(f.listed, filter)
	var out []models.Testimonial
	for i := len(f.created) - 1; i >= 0; i-- {
		t := f.created[i]
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

type fakeNotifier struct {
	err      error
	payloads []queue.TestimonialSubmittedPayload
}

func (f *fakeNotifier) EnqueueTestimonialSubmitted(ctx context.Context, p queue.TestimonialSubmittedPayload) error {
	f.payloads = append(f.payloads, p)
	return f.err
}

var errBoom = errors.New("boom")
