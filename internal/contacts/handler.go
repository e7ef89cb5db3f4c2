package contacts

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/pkg/metrics"
	"github.com/lahiru-voiceai/site/pkg/queue"
	"github.com/lahiru-voiceai/site/pkg/response"
)

// Store persists contact messages.
type Store interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	List(ctx context.Context, limit int) ([]models.ContactMessage, error)
}

// Notifier is told about every stored message.
type Notifier interface {
	EnqueueContactReceived(ctx context.Context, payload queue.ContactReceivedPayload) error
}

// Handler handles contact form endpoints.
type Handler struct {
	store    Store
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewHandler creates a contacts handler. notifier may be nil.
func NewHandler(store Store, notifier Notifier, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Handler{store: store, notifier: notifier, metrics: m, logger: logger}
}

// CreateRequest is the body for POST /api/contact.
type CreateRequest struct {
	Name    string `json:"name" form:"name" binding:"required,max=200"`
	Email   string `json:"email" form:"email" binding:"required,email,max=320"`
	Message string `json:"message" form:"message" binding:"required,max=5000"`
}

// Create handles POST /api/contact.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.metrics.ContactMessages.WithLabelValues(metrics.OutcomeValidationError).Inc()
		response.BadRequest(c, "name, a valid email and message are required")
		return
	}
	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
		Status:  models.ContactStatusNew,
	}
	if msg.Name == "" || msg.Message == "" {
		h.metrics.ContactMessages.WithLabelValues(metrics.OutcomeValidationError).Inc()
		response.BadRequest(c, "name, a valid email and message are required")
		return
	}
	if err := h.store.Create(c.Request.Context(), msg); err != nil {
		h.metrics.ContactMessages.WithLabelValues(metrics.OutcomeWriteError).Inc()
		h.logger.Error("store contact message failed", zap.Error(err))
		response.Internal(c, "failed to send message")
		return
	}
	h.metrics.ContactMessages.WithLabelValues(metrics.OutcomeSuccess).Inc()
	if h.notifier != nil {
		err := h.notifier.EnqueueContactReceived(c.Request.Context(), queue.ContactReceivedPayload{
			ContactID: msg.ID,
			Name:      msg.Name,
			Email:     msg.Email,
			Message:   msg.Message,
		})
		if err != nil {
			h.logger.Warn("enqueue contact notification failed", zap.Error(err), zap.String("contact_id", msg.ID.String()))
		}
	}
	response.Created(c, msg)
}

// List handles GET /api/admin/contacts.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list contact messages failed", zap.Error(err))
		response.Internal(c, "failed to list messages")
		return
	}
	if list == nil {
		list = []models.ContactMessage{}
	}
	response.OK(c, list)
}
