package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lahiru-voiceai/site/internal/capture"
	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/internal/playback"
	"github.com/lahiru-voiceai/site/internal/testimonials"
	"github.com/lahiru-voiceai/site/pkg/response"
)

// MaxFrameBytes bounds a single inbound frame. Recorder chunks are sent one per timeslice.
const MaxFrameBytes = 8 << 20

const previewOwnerID = "capture-preview"

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Options configures capture sessions created by the bridge.
type Options struct {
	TickInterval   time.Duration
	MaxClipBytes   int64
	AllowedOrigins []string // empty or "*" allows any origin
	// SubmitLimiter budgets submit commands per client IP, sharing the
	// limiter that guards POST /api/testimonials. Nil disables the check.
	SubmitLimiter Limiter
}

// Limiter reports whether key may perform another submission.
type Limiter interface {
	Allow(key string) bool
}

// ErrRateLimited is reported when a client submits faster than its budget.
var ErrRateLimited = errors.New("too many submissions, try again in a minute")

// Bridge serves the capture websocket and the clip preview endpoint.
type Bridge struct {
	hub       *Hub
	submitter capture.Submitter
	opts      Options
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewBridge creates a capture bridge that submits through submitter.
func NewBridge(hub *Hub, submitter capture.Submitter, opts Options, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bridge{hub: hub, submitter: submitter, opts: opts, logger: logger}
	b.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     b.checkOrigin,
	}
	return b
}

func (b *Bridge) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(b.opts.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range b.opts.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// ServeWs handles GET /ws/capture. Each connection owns one capture session.
func (b *Bridge) ServeWs(c *gin.Context) {
	conn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := newClient(b, conn, c.ClientIP())
	b.hub.Register(client)
	client.emit("state", client.session.Snapshot())
	client.wg.Add(2)
	go client.writePump()
	go client.runCommands()
	client.readPump()
}

// Preview handles GET /api/capture/:id/preview. Serves the recorded clip of a live session.
func (b *Bridge) Preview(c *gin.Context) {
	client, ok := b.hub.Get(c.Param("id"))
	if !ok {
		response.NotFound(c, "capture session not found")
		return
	}
	clip := client.session.Clip()
	if clip == nil {
		response.NotFound(c, "no recorded clip")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", clip.ContentType)
	http.ServeContent(c.Writer, c.Request, clip.ID+clip.Ext, time.Time{}, bytes.NewReader(clip.Data))
}

type command struct {
	seq uint64
	msg WSMessage
}

// Client is one feedback page connected over a WebSocket. The browser end
// acts as the media device and recorder for the session.
type Client struct {
	ID       string
	remoteIP string
	limiter  Limiter
	session  *capture.Session
	slot     *playback.Slot
	preview  playback.Owner
	hub      *Hub
	conn     *websocket.Conn
	send     chan WSMessage
	commands chan command
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *zap.Logger

	seq       uint64 // read pump only
	cancelSeq atomic.Uint64

	mu          sync.Mutex
	streamReply chan error
	stopReply   chan error
	sink        func([]byte)
	last        capture.Snapshot
	sent        bool
}

func newClient(b *Bridge, conn *websocket.Conn, remoteIP string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		remoteIP: remoteIP,
		limiter:  b.opts.SubmitLimiter,
		slot:     playback.NewSlot(),
		hub:      b.hub,
		conn:     conn,
		send:     make(chan WSMessage, 256),
		commands: make(chan command, 32),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	c.preview = c.pauseOwner(previewOwnerID)
	c.session = capture.NewSession(remoteDevice{c}, remoteRecorder{c}, b.submitter, capture.Options{
		TickInterval: b.opts.TickInterval,
		MaxClipBytes: b.opts.MaxClipBytes,
		OnChange:     c.onChange,
		Logger:       b.logger,
	})
	c.ID = c.session.ID()
	c.logger = b.logger.With(zap.String("session_id", c.ID))
	return c
}

func (c *Client) pauseOwner(id string) playback.Owner {
	return playback.FuncOwner{
		OwnerID: id,
		OnPause: func() { c.emit("pause", idPayload{ID: id}) },
	}
}

// Session returns the capture session driven by this client.
func (c *Client) Session() *capture.Session { return c.session }

func (c *Client) emit(event string, payload interface{}) {
	msg, err := encode(event, payload)
	if err != nil {
		c.logger.Error("encode websocket message failed", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.logger.Warn("send buffer full, message dropped", zap.String("event", event))
	}
}

func (c *Client) onChange(snap capture.Snapshot) {
	c.mu.Lock()
	prev, had := c.last, c.sent
	c.last, c.sent = snap, true
	c.mu.Unlock()

	if had && onlyElapsedChanged(prev, snap) {
		c.emit("tick", tickPayload{Elapsed: snap.Elapsed, ElapsedText: snap.ElapsedText})
		return
	}
	c.emit("state", snap)
	switch {
	case !cameraLive(snap.Mode):
		c.slot.Release(c.preview)
	case !had || !cameraLive(prev.Mode):
		// Only going live claims the slot; a player started while the camera
		// is on keeps it until it ends.
		c.slot.Claim(c.preview)
	}
}

func cameraLive(m capture.Mode) bool {
	return m == capture.ModeLivePreview || m == capture.ModeRecording
}

func onlyElapsedChanged(a, b capture.Snapshot) bool {
	if a.Elapsed == b.Elapsed {
		return false
	}
	a.Elapsed, a.ElapsedText = 0, ""
	b.Elapsed, b.ElapsedText = 0, ""
	return a == b
}

func (c *Client) readPump() {
	defer func() {
		c.cancel()
		close(c.done)
		_ = c.conn.Close()
		c.wg.Wait()
		final := c.session.Close()
		c.hub.Unregister(c, final)
	}()

	c.conn.SetReadLimit(MaxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("capture socket closed", zap.Error(err))
			}
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		if typ == websocket.BinaryMessage {
			c.mu.Lock()
			sink := c.sink
			c.mu.Unlock()
			if sink != nil {
				sink(data)
			}
			continue
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.emit("error", errorPayload{Kind: "invalid", Message: "malformed message"})
			continue
		}
		c.route(msg)
	}
}

// route handles browser replies and cancel inline; everything else is queued
// so a command waiting on the browser never blocks the read loop.
func (c *Client) route(msg WSMessage) {
	switch msg.Event {
	case "stream_granted":
		c.reply(&c.streamReply, nil, func() { c.emit("release_stream", nil) })
	case "stream_denied":
		var p errorPayload
		_ = json.Unmarshal(msg.Data, &p)
		err := capture.ErrPermissionDenied
		if p.Message != "" {
			err = fmt.Errorf("%w: %s", capture.ErrPermissionDenied, p.Message)
		}
		c.reply(&c.streamReply, err, nil)
	case "recorder_stopped":
		var p errorPayload
		_ = json.Unmarshal(msg.Data, &p)
		var err error
		if p.Message != "" {
			err = errors.New(p.Message)
		}
		c.reply(&c.stopReply, err, nil)
	case "play":
		var p idPayload
		if json.Unmarshal(msg.Data, &p) == nil && p.ID != "" {
			c.slot.Claim(c.pauseOwner(p.ID))
		}
	case "ended":
		var p idPayload
		if json.Unmarshal(msg.Data, &p) == nil && p.ID != "" {
			c.slot.ReleaseID(p.ID)
		}
	case "cancel":
		c.cancelSeq.Store(c.seq)
		c.session.Cancel()
	case "select_tab", "set_text", "open_camera", "start_recording", "stop_recording",
		"rerecord", "remove", "submit", "reset":
		c.seq++
		select {
		case c.commands <- command{seq: c.seq, msg: msg}:
		default:
			c.emit("error", errorPayload{Event: msg.Event, Kind: "busy", Message: "too many pending commands"})
		}
	default:
		c.emit("error", errorPayload{Event: msg.Event, Kind: "invalid", Message: "unknown event"})
	}
}

// reply delivers err to the pending waiter in *slot. With no waiter, orphan runs instead.
func (c *Client) reply(slot *chan error, err error, orphan func()) {
	c.mu.Lock()
	ch := *slot
	*slot = nil
	c.mu.Unlock()
	if ch == nil {
		if orphan != nil {
			orphan()
		}
		return
	}
	ch <- err
}

func (c *Client) runCommands() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case cmd := <-c.commands:
			if cmd.seq <= c.cancelSeq.Load() {
				continue
			}
			if err := c.handle(cmd.msg); err != nil && !errors.Is(err, capture.ErrCancelled) {
				c.emit("error", errorPayload{Event: cmd.msg.Event, Kind: errorKind(err), Message: err.Error()})
			}
		}
	}
}

func (c *Client) handle(msg WSMessage) error {
	s := c.session
	switch msg.Event {
	case "select_tab":
		var p struct {
			Tab string `json:"tab"`
		}
		_ = json.Unmarshal(msg.Data, &p)
		kind, ok := models.ParseTestimonialKind(p.Tab)
		if !ok {
			return fmt.Errorf("%w: unknown tab %q", capture.ErrInvalidTransition, p.Tab)
		}
		return s.SelectTab(kind)
	case "set_text":
		var p struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return fmt.Errorf("%w: %w", testimonials.ErrValidation, err)
		}
		return s.SetText(p.Text)
	case "open_camera":
		return s.RequestCamera(c.ctx)
	case "start_recording":
		return s.StartRecording()
	case "stop_recording":
		return s.StopRecording(c.ctx)
	case "rerecord":
		return s.Rerecord(c.ctx)
	case "remove":
		return s.Remove()
	case "reset":
		return s.Reset()
	case "submit":
		var p struct {
			FullName string `json:"fullName"`
			Role     string `json:"role"`
		}
		_ = json.Unmarshal(msg.Data, &p)
		if c.limiter != nil && !c.limiter.Allow(c.remoteIP) {
			return ErrRateLimited
		}
		if err := s.SetDetails(p.FullName, p.Role); err != nil {
			return err
		}
		rec, err := s.Submit(c.ctx)
		if err != nil {
			return err
		}
		c.emit("submitted", rec)
		return nil
	}
	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, capture.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, testimonials.ErrUpload):
		return "upload_failed"
	case errors.Is(err, testimonials.ErrWrite):
		return "write_failed"
	case errors.Is(err, testimonials.ErrValidation):
		return "validation"
	case errors.Is(err, capture.ErrInvalidTransition):
		return "invalid"
	default:
		return "recording_failed"
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		c.wg.Done()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}

type idPayload struct {
	ID string `json:"id"`
}

type tickPayload struct {
	Elapsed     int    `json:"elapsed"`
	ElapsedText string `json:"elapsedText"`
}

type errorPayload struct {
	Event   string `json:"event,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}
