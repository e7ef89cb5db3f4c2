// Package capture drives one testimonial form through camera acquisition,
// recording, preview and submission. The media device and the recorder are
// supplied by the caller; in production they proxy a browser over a websocket.
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/internal/testimonials"
)

// Mode is the state of a capture session.
type Mode string

const (
	ModeIdle               Mode = "idle"
	ModeAwaitingPermission Mode = "awaiting-permission"
	ModeLivePreview        Mode = "live-preview"
	ModeRecording          Mode = "recording"
	ModeRecorded           Mode = "recorded"
	ModeSubmitting         Mode = "submitting"
	ModeSubmitted          Mode = "submitted"
	ModeFailed             Mode = "failed"
)

var (
	ErrPermissionDenied  = errors.New("camera or microphone access denied")
	ErrInvalidTransition = errors.New("invalid capture transition")
	ErrNothingToSubmit   = errors.New("nothing to submit")
	ErrEmptyClip         = errors.New("recording produced no data")
	ErrClipTooLarge      = errors.New("recording exceeds the size limit")
	ErrCancelled         = errors.New("capture cancelled")
	ErrSessionClosed     = errors.New("capture session closed")
)

// Stream is an exclusively owned camera/microphone stream.
type Stream interface {
	// Stop releases the underlying hardware. It must be safe to call once per stream.
	Stop()
}

// Device grants media streams.
type Device interface {
	RequestStream(ctx context.Context, video, audio bool) (Stream, error)
}

// Recording is an in-progress recorder.
type Recording interface {
	// Stop finalizes the recording. When it returns, every chunk has been delivered.
	Stop(ctx context.Context) error
	// Discard stops the recorder without waiting for buffered data.
	Discard()
}

// Recorder starts recordings on a stream. onChunk is called from other
// goroutines with encoded media; it must not be called synchronously from Start.
type Recorder interface {
	Start(stream Stream, onChunk func([]byte)) (Recording, error)
}

// Submitter persists a testimonial.
type Submitter interface {
	Submit(ctx context.Context, sub testimonials.Submission) (*models.Testimonial, error)
}

// Clip is a finished recording held in memory until submitted or discarded.
type Clip struct {
	ID              string
	Data            []byte
	ContentType     string
	Ext             string
	DurationSeconds int
}

// Size returns the clip length in bytes.
func (c *Clip) Size() int { return len(c.Data) }

// Snapshot is a read-only view of a session for transports and templates.
type Snapshot struct {
	ID          string                 `json:"id"`
	Mode        Mode                   `json:"mode"`
	Tab         models.TestimonialKind `json:"tab"`
	Elapsed     int                    `json:"elapsed"`
	ElapsedText string                 `json:"elapsedText"`
	HasClip     bool                   `json:"hasClip"`
	ClipID      string                 `json:"clipId,omitempty"`
	ClipBytes   int                    `json:"clipBytes,omitempty"`
	CanSubmit   bool                   `json:"canSubmit"`
	Error       string                 `json:"error,omitempty"`
}

// FormatElapsed renders seconds as m:ss.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
