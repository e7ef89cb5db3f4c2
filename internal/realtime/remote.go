package realtime

import (
	"context"
	"sync"

	"github.com/lahiru-voiceai/site/internal/capture"
)

// remoteDevice asks the browser for getUserMedia and waits for its answer.
type remoteDevice struct {
	c *Client
}

type streamRequest struct {
	Video bool `json:"video"`
	Audio bool `json:"audio"`
}

func (d remoteDevice) RequestStream(ctx context.Context, video, audio bool) (capture.Stream, error) {
	c := d.c
	reply := make(chan error, 1)
	c.mu.Lock()
	c.streamReply = reply
	c.mu.Unlock()
	c.emit("request_stream", streamRequest{Video: video, Audio: audio})

	select {
	case err := <-reply:
		if err != nil {
			return nil, err
		}
		return &remoteStream{c: c}, nil
	case <-ctx.Done():
		c.clearReply(&c.streamReply, reply)
		return nil, ctx.Err()
	case <-c.done:
		return nil, capture.ErrSessionClosed
	}
}

func (c *Client) clearReply(slot *chan error, ch chan error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if *slot == ch {
		*slot = nil
	}
}

// remoteStream is the browser's MediaStream; stopping it stops every track.
type remoteStream struct {
	c    *Client
	once sync.Once
}

func (s *remoteStream) Stop() {
	s.once.Do(func() { s.c.emit("release_stream", nil) })
}

// remoteRecorder drives a MediaRecorder in the browser. Chunks arrive as
// binary frames on the read pump.
type remoteRecorder struct {
	c *Client
}

type recorderStart struct {
	MimeType string `json:"mimeType"`
}

type recorderStop struct {
	Discard bool `json:"discard,omitempty"`
}

func (r remoteRecorder) Start(stream capture.Stream, onChunk func([]byte)) (capture.Recording, error) {
	c := r.c
	c.mu.Lock()
	c.sink = onChunk
	c.mu.Unlock()
	c.emit("start_recorder", recorderStart{MimeType: "video/webm"})
	return &remoteRecording{c: c}, nil
}

type remoteRecording struct {
	c *Client
}

// Stop asks the browser to finalize and waits for recorder_stopped. The
// browser flushes its last chunk before replying, and frames are read in
// order, so every chunk has been delivered when Stop returns.
func (r *remoteRecording) Stop(ctx context.Context) error {
	c := r.c
	reply := make(chan error, 1)
	c.mu.Lock()
	c.stopReply = reply
	c.mu.Unlock()
	defer c.clearSink()
	c.emit("stop_recorder", recorderStop{})

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		c.clearReply(&c.stopReply, reply)
		return ctx.Err()
	case <-c.done:
		return capture.ErrSessionClosed
	}
}

func (r *remoteRecording) Discard() {
	r.c.clearSink()
	r.c.emit("stop_recorder", recorderStop{Discard: true})
}

func (c *Client) clearSink() {
	c.mu.Lock()
	c.sink = nil
	c.mu.Unlock()
}
