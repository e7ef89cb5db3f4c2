package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TestimonialKind is the variant tag of a testimonial.
type TestimonialKind string

const (
	TestimonialWritten TestimonialKind = "written"
	TestimonialVideo   TestimonialKind = "video"
)

// ReviewStatus is the moderation state. Records are created pending; promotion
// to published happens outside this service.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewPublished ReviewStatus = "published"
)

// ParseTestimonialKind returns the kind for s or false when s is not a known kind.
func ParseTestimonialKind(s string) (TestimonialKind, bool) {
	switch TestimonialKind(strings.ToLower(strings.TrimSpace(s))) {
	case TestimonialWritten:
		return TestimonialWritten, true
	case TestimonialVideo:
		return TestimonialVideo, true
	}
	return "", false
}

// ParseReviewStatus returns the status for s or false when s is not a known status.
func ParseReviewStatus(s string) (ReviewStatus, bool) {
	switch ReviewStatus(s) {
	case ReviewPending:
		return ReviewPending, true
	case ReviewPublished:
		return ReviewPublished, true
	}
	return "", false
}

var (
	ErrEmptyTestimonialText = errors.New("written testimonial requires text")
	ErrEmptyVideoURL        = errors.New("video testimonial requires a video url")
	ErrMixedPayload         = errors.New("testimonial carries payload of the other kind")
	ErrUnknownKind          = errors.New("unknown testimonial kind")
	ErrUnknownReviewStatus  = errors.New("unknown review status")
)

// Testimonial is one persisted endorsement. Body is set only for written
// testimonials, VideoURL/VideoKey only for video ones; use the constructors.
type Testimonial struct {
	ID        uuid.UUID       `json:"id"`
	FullName  string          `json:"fullName"`
	Role      string          `json:"role"`
	Kind      TestimonialKind `json:"type"`
	Body      *string         `json:"testimonial"`
	VideoURL  *string         `json:"videoUrl"`
	VideoKey  string          `json:"-"`
	Status    ReviewStatus    `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewWrittenTestimonial builds a pending written testimonial.
func NewWrittenTestimonial(fullName, role, text string) *Testimonial {
	return &Testimonial{
		FullName: fullName,
		Role:     role,
		Kind:     TestimonialWritten,
		Body:     &text,
		Status:   ReviewPending,
	}
}

// NewVideoTestimonial builds a pending video testimonial pointing at an uploaded object.
func NewVideoTestimonial(fullName, role, videoURL, videoKey string) *Testimonial {
	return &Testimonial{
		FullName: fullName,
		Role:     role,
		Kind:     TestimonialVideo,
		VideoURL: &videoURL,
		VideoKey: videoKey,
		Status:   ReviewPending,
	}
}

// Validate checks the variant invariants.
func (t *Testimonial) Validate() error {
	switch t.Kind {
	case TestimonialWritten:
		if t.Body == nil || strings.TrimSpace(*t.Body) == "" {
			return ErrEmptyTestimonialText
		}
		if t.VideoURL != nil || t.VideoKey != "" {
			return ErrMixedPayload
		}
	case TestimonialVideo:
		if t.VideoURL == nil || *t.VideoURL == "" {
			return ErrEmptyVideoURL
		}
		if t.Body != nil {
			return ErrMixedPayload
		}
	default:
		return ErrUnknownKind
	}
	if _, ok := ParseReviewStatus(string(t.Status)); !ok {
		return ErrUnknownReviewStatus
	}
	return nil
}

// Text returns the written body or "".
func (t *Testimonial) Text() string {
	if t.Body == nil {
		return ""
	}
	return *t.Body
}

// Video returns the retrieval URL or "".
func (t *Testimonial) Video() string {
	if t.VideoURL == nil {
		return ""
	}
	return *t.VideoURL
}
