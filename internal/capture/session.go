package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/internal/testimonials"
)

const (
	clipContentType = "video/webm"
	clipExt         = ".webm"
)

// Options tunes a session. Zero values are replaced by defaults.
type Options struct {
	TickInterval time.Duration
	MaxClipBytes int64 // 0 means unbounded
	OnChange     func(Snapshot)
	Logger       *zap.Logger
}

// Session is the state machine behind one feedback form. All methods are safe
// for concurrent use; blocking collaborator calls run without holding the lock
// and their results are dropped if the session moved on in the meantime.
type Session struct {
	id        string
	device    Device
	recorder  Recorder
	submitter Submitter
	opts      Options
	logger    *zap.Logger

	mu         sync.Mutex
	closed     bool
	gen        uint64
	mode       Mode
	tab        models.TestimonialKind
	fullName   string
	role       string
	text       string
	stream     Stream
	recording  Recording
	collecting bool
	chunks     [][]byte
	size       int64
	overflow   bool
	clip       *Clip
	elapsed    int
	stopTick   chan struct{}
	tickDone   chan struct{}
	lastErr    error
}

// NewSession creates an idle session on the written tab.
func NewSession(device Device, recorder Recorder, submitter Submitter, opts Options) *Session {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &Session{
		id:        id,
		device:    device,
		recorder:  recorder,
		submitter: submitter,
		opts:      opts,
		logger:    logger.With(zap.String("capture_session", id)),
		mode:      ModeIdle,
		tab:       models.TestimonialWritten,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		Mode:        s.mode,
		Tab:         s.tab,
		Elapsed:     s.elapsed,
		ElapsedText: FormatElapsed(s.elapsed),
		CanSubmit:   s.canSubmitLocked(),
	}
	if s.clip != nil {
		snap.HasClip = true
		snap.ClipID = s.clip.ID
		snap.ClipBytes = s.clip.Size()
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

func (s *Session) notify() {
	if s.opts.OnChange == nil {
		return
	}
	s.opts.OnChange(s.Snapshot())
}

// Clip returns the recorded clip, or nil.
func (s *Session) Clip() *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clip
}

// SelectTab switches between the written and video inputs. Switching keeps
// any recorded clip and any live camera.
func (s *Session) SelectTab(tab models.TestimonialKind) error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if tab != models.TestimonialWritten && tab != models.TestimonialVideo {
		s.mu.Unlock()
		return fmt.Errorf("%w: unknown tab %q", ErrInvalidTransition, tab)
	}
	if s.mode == ModeSubmitting {
		s.mu.Unlock()
		return fmt.Errorf("%w: submission in progress", ErrInvalidTransition)
	}
	s.tab = tab
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetText stores the written testimonial text.
func (s *Session) SetText(text string) error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.text = text
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetDetails stores the submitter's name and role. Both may be empty.
func (s *Session) SetDetails(fullName, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usableLocked(); err != nil {
		return err
	}
	s.fullName = fullName
	s.role = role
	return nil
}

// RequestCamera moves idle (or failed) to awaiting-permission and asks the
// device for a camera and microphone stream.
func (s *Session) RequestCamera(ctx context.Context) error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode != ModeIdle && s.mode != ModeFailed {
		mode := s.mode
		s.mu.Unlock()
		return fmt.Errorf("%w: open camera from %s", ErrInvalidTransition, mode)
	}
	s.mode = ModeAwaitingPermission
	s.lastErr = nil
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.notify()
	return s.acquire(ctx, gen)
}

// Rerecord discards the recorded clip and acquires a fresh stream.
func (s *Session) Rerecord(ctx context.Context) error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode != ModeRecorded {
		mode := s.mode
		s.mu.Unlock()
		return fmt.Errorf("%w: re-record from %s", ErrInvalidTransition, mode)
	}
	s.clip = nil
	s.elapsed = 0
	s.mode = ModeAwaitingPermission
	s.lastErr = nil
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.notify()
	return s.acquire(ctx, gen)
}

func (s *Session) acquire(ctx context.Context, gen uint64) error {
	stream, err := s.device.RequestStream(ctx, true, true)

	s.mu.Lock()
	if s.gen != gen || s.closed {
		s.mu.Unlock()
		if stream != nil {
			stream.Stop()
		}
		return ErrCancelled
	}
	if err != nil {
		if !errors.Is(err, ErrPermissionDenied) {
			err = fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		s.mode = ModeIdle
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Info("camera access denied", zap.Error(err))
		s.notify()
		return err
	}
	s.stream = stream
	s.mode = ModeLivePreview
	s.mu.Unlock()
	s.notify()
	return nil
}

// StartRecording begins buffering chunks from the live stream and starts the
// elapsed-time counter at zero.
func (s *Session) StartRecording() error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode != ModeLivePreview || s.stream == nil {
		mode := s.mode
		s.mu.Unlock()
		return fmt.Errorf("%w: start recording from %s", ErrInvalidTransition, mode)
	}
	s.chunks = nil
	s.size = 0
	s.overflow = false
	s.elapsed = 0
	rec, err := s.recorder.Start(s.stream, s.chunkSink(s.gen))
	if err != nil {
		s.lastErr = fmt.Errorf("start recorder: %w", err)
		s.mu.Unlock()
		s.notify()
		return err
	}
	s.recording = rec
	s.collecting = true
	s.mode = ModeRecording
	s.lastErr = nil
	s.startTickerLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Session) chunkSink(gen uint64) func([]byte) {
	return func(p []byte) {
		if len(p) == 0 {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || !s.collecting {
			return
		}
		if s.opts.MaxClipBytes > 0 && s.size+int64(len(p)) > s.opts.MaxClipBytes {
			s.overflow = true
			return
		}
		buf := make([]byte, len(p))
		copy(buf, p)
		s.chunks = append(s.chunks, buf)
		s.size += int64(len(buf))
	}
}

// StopRecording finalizes the recorder, concatenates the buffered chunks into
// one clip and releases the camera.
func (s *Session) StopRecording(ctx context.Context) error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode != ModeRecording || s.recording == nil {
		mode := s.mode
		s.mu.Unlock()
		return fmt.Errorf("%w: stop recording from %s", ErrInvalidTransition, mode)
	}
	rec := s.recording
	s.recording = nil
	gen := s.gen
	tickDone := s.stopTickerLocked()
	s.mu.Unlock()

	waitTicker(tickDone)
	stopErr := rec.Stop(ctx)

	s.mu.Lock()
	if s.gen != gen || s.closed {
		s.mu.Unlock()
		return ErrCancelled
	}
	s.collecting = false
	stream := s.stream
	s.stream = nil
	data := bytes.Join(s.chunks, nil)
	overflow := s.overflow
	s.chunks = nil
	s.size = 0
	s.overflow = false

	var err error
	switch {
	case stopErr != nil:
		err = fmt.Errorf("finalize recording: %w", stopErr)
	case overflow:
		err = ErrClipTooLarge
	case len(data) == 0:
		err = ErrEmptyClip
	}
	if err != nil {
		s.mode = ModeFailed
		s.lastErr = err
	} else {
		s.clip = &Clip{
			ID:              uuid.New().String(),
			Data:            data,
			ContentType:     clipContentType,
			Ext:             clipExt,
			DurationSeconds: s.elapsed,
		}
		s.mode = ModeRecorded
		s.lastErr = nil
	}
	s.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
	if err != nil {
		s.logger.Warn("recording failed", zap.Error(err))
	}
	s.notify()
	return err
}

// Remove discards a recorded clip and returns to idle.
func (s *Session) Remove() error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode != ModeRecorded {
		mode := s.mode
		s.mu.Unlock()
		return fmt.Errorf("%w: remove from %s", ErrInvalidTransition, mode)
	}
	release := s.teardownLocked()
	s.mode = ModeIdle
	s.lastErr = nil
	s.mu.Unlock()
	release()
	s.notify()
	return nil
}

// Cancel returns the session to idle from any state, releasing the camera,
// stopping the timer and dropping any clip. An in-flight camera request or
// submission is not aborted; its result is discarded when it completes.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	release := s.teardownLocked()
	s.mode = ModeIdle
	s.lastErr = nil
	s.mu.Unlock()
	release()
	s.notify()
}

// Reset starts a new form after a successful submission.
func (s *Session) Reset() error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode != ModeSubmitted {
		mode := s.mode
		s.mu.Unlock()
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, mode)
	}
	s.mode = ModeIdle
	s.lastErr = nil
	s.mu.Unlock()
	s.notify()
	return nil
}

// CanSubmit reports whether the submit control is enabled.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Session) canSubmitLocked() bool {
	if s.closed || s.mode == ModeSubmitting {
		return false
	}
	if s.tab == models.TestimonialWritten {
		return strings.TrimSpace(s.text) != ""
	}
	return s.mode == ModeRecorded && s.clip != nil && s.clip.Size() > 0
}

// Submit persists the form: for the video tab the clip is uploaded before the
// record is written. On success the form is cleared and the session is
// submitted; on failure it returns to the state it was submitted from with
// all input kept.
func (s *Session) Submit(ctx context.Context) (*models.Testimonial, error) {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.mode == ModeSubmitting {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: submission in progress", ErrInvalidTransition)
	}
	if !s.canSubmitLocked() {
		s.lastErr = ErrNothingToSubmit
		s.mu.Unlock()
		s.notify()
		return nil, fmt.Errorf("%w: %w", testimonials.ErrValidation, ErrNothingToSubmit)
	}

	var release func()
	sub := testimonials.Submission{
		FullName: s.fullName,
		Role:     s.role,
		Kind:     s.tab,
	}
	if s.tab == models.TestimonialWritten {
		sub.Text = s.text
		if s.mode != ModeIdle && s.mode != ModeRecorded && s.mode != ModeFailed && s.mode != ModeSubmitted {
			// A live camera is irrelevant to a written testimonial.
			release = s.teardownLocked()
			s.mode = ModeIdle
		}
	} else {
		sub.Video = &testimonials.VideoUpload{
			Body:        bytes.NewReader(s.clip.Data),
			Size:        int64(s.clip.Size()),
			ContentType: s.clip.ContentType,
			Ext:         s.clip.Ext,
		}
	}
	prev := s.mode
	if prev == ModeSubmitted {
		prev = ModeIdle
	}
	s.mode = ModeSubmitting
	s.lastErr = nil
	gen := s.gen
	s.mu.Unlock()
	if release != nil {
		release()
	}
	s.notify()

	rec, err := s.submitter.Submit(ctx, sub)

	s.mu.Lock()
	if s.gen != gen || s.closed {
		s.mu.Unlock()
		if err == nil {
			s.logger.Info("submission completed after cancel", zap.String("testimonial_id", rec.ID.String()))
		}
		return nil, ErrCancelled
	}
	if err != nil {
		s.mode = prev
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Warn("submission failed", zap.Error(err))
		s.notify()
		return nil, err
	}
	s.mode = ModeSubmitted
	s.fullName = ""
	s.role = ""
	s.text = ""
	s.clip = nil
	s.elapsed = 0
	s.mu.Unlock()
	s.notify()
	return rec, nil
}

// Close tears the session down: the camera is released, the timer stopped and
// the clip dropped. Further calls return ErrSessionClosed.
func (s *Session) Close() Mode {
	s.mu.Lock()
	if s.closed {
		mode := s.mode
		s.mu.Unlock()
		return mode
	}
	final := s.mode
	release := s.teardownLocked()
	s.closed = true
	s.mu.Unlock()
	release()
	return final
}

func (s *Session) usableLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// teardownLocked invalidates pending async work and detaches every owned
// resource. The returned func releases them and must run without the lock.
func (s *Session) teardownLocked() func() {
	s.gen++
	tickDone := s.stopTickerLocked()
	rec := s.recording
	stream := s.stream
	s.recording = nil
	s.stream = nil
	s.collecting = false
	s.chunks = nil
	s.size = 0
	s.overflow = false
	s.clip = nil
	s.elapsed = 0
	return func() {
		waitTicker(tickDone)
		if rec != nil {
			rec.Discard()
		}
		if stream != nil {
			stream.Stop()
		}
	}
}

func (s *Session) startTickerLocked() {
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stopTick = stop
	s.tickDone = done
	interval := s.opts.TickInterval
	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.mu.Lock()
				if s.stopTick != stop {
					s.mu.Unlock()
					return
				}
				s.elapsed++
				s.mu.Unlock()
				s.notify()
			}
		}
	}()
}

func (s *Session) stopTickerLocked() chan struct{} {
	if s.stopTick == nil {
		return nil
	}
	close(s.stopTick)
	done := s.tickDone
	s.stopTick = nil
	s.tickDone = nil
	return done
}

func waitTicker(done chan struct{}) {
	if done != nil {
		<-done
	}
}
