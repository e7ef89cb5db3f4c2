package testimonials

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/pkg/response"
	"github.com/lahiru-voiceai/site/pkg/storage"
)

// Presigner issues time-limited links to stored clips for reviewers.
type Presigner interface {
	PresignTestimonial(ctx context.Context, key string) (string, time.Duration, error)
}

// SubmitRequest is the JSON body for POST /api/testimonials.
type SubmitRequest struct {
	FullName    string `json:"fullName"`
	Role        string `json:"role"`
	Type        string `json:"type" binding:"required"`
	Testimonial string `json:"testimonial"`
}

// multipartMemory is how much of a multipart body is held in memory before
// file parts spill to disk.
const multipartMemory = 32 << 20

// Handler handles testimonial HTTP endpoints.
type Handler struct {
	svc            *Service
	presigner      Presigner
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler creates a testimonials handler. presigner may be nil.
func NewHandler(svc *Service, presigner Presigner, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, presigner: presigner, maxUploadBytes: maxUploadBytes, logger: logger}
}

// Submit handles POST /api/testimonials. Written testimonials may be sent as
// JSON or a form; video testimonials are multipart with the clip in "video".
func (h *Handler) Submit(c *gin.Context) {
	var sub Submission
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if h.maxUploadBytes > 0 {
			// Headroom for the text fields around the file part.
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
		}
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.RequestEntityTooLarge(c, "video exceeds upload limit")
				return
			}
			response.BadRequest(c, "invalid multipart body")
			return
		}
		kind, ok := models.ParseTestimonialKind(c.PostForm("type"))
		if !ok {
			response.BadRequest(c, "type must be written or video")
			return
		}
		sub = Submission{
			FullName: c.PostForm("fullName"),
			Role:     c.PostForm("role"),
			Kind:     kind,
			Text:     c.PostForm("testimonial"),
		}
		if kind == models.TestimonialVideo {
			fh, err := c.FormFile("video")
			if err != nil {
				response.BadRequest(c, "video file required")
				return
			}
			if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
				response.RequestEntityTooLarge(c, "video exceeds upload limit")
				return
			}
			contentType := fh.Header.Get("Content-Type")
			if !storage.ValidateVideoFileType(contentType, fh.Filename) {
				response.BadRequest(c, "video must be MP4, MOV or WEBM")
				return
			}
			f, err := fh.Open()
			if err != nil {
				response.BadRequest(c, "unreadable video file")
				return
			}
			defer f.Close()
			ext := storage.VideoExtension(contentType, fh.Filename)
			sub.Video = &VideoUpload{
				Body:        f,
				Size:        fh.Size,
				ContentType: storage.ContentTypeForExtension(ext),
				Ext:         ext,
			}
		}
	} else {
		var req SubmitRequest
		if err := c.ShouldBind(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
		kind, ok := models.ParseTestimonialKind(req.Type)
		if !ok {
			response.BadRequest(c, "type must be written or video")
			return
		}
		if kind == models.TestimonialVideo {
			response.BadRequest(c, "video testimonials must be sent as multipart/form-data")
			return
		}
		sub = Submission{FullName: req.FullName, Role: req.Role, Kind: kind, Text: req.Testimonial}
	}

	t, err := h.svc.Submit(c.Request.Context(), sub)
	if err != nil {
		WriteSubmitError(c, err)
		return
	}
	response.Created(c, t)
}

// WriteSubmitError maps a Submit error to an HTTP response.
func WriteSubmitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrUpload):
		response.BadGateway(c, "failed to upload video")
	default:
		response.Internal(c, "failed to save testimonial")
	}
}

// ListPublished handles GET /api/testimonials.
func (h *Handler) ListPublished(c *gin.Context) {
	list, err := h.svc.ListPublished(c.Request.Context(), queryLimit(c))
	if err != nil {
		h.logger.Error("list testimonials failed", zap.Error(err))
		response.Internal(c, "failed to list testimonials")
		return
	}
	response.OK(c, nonNil(list))
}

// ListAll handles GET /api/admin/testimonials?status=pending|published.
func (h *Handler) ListAll(c *gin.Context) {
	var status *models.ReviewStatus
	if raw := c.Query("status"); raw != "" {
		st, ok := models.ParseReviewStatus(raw)
		if !ok {
			response.BadRequest(c, "status must be pending or published")
			return
		}
		status = &st
	}
	list, err := h.svc.List(c.Request.Context(), status, queryLimit(c))
	if err != nil {
		h.logger.Error("list testimonials failed", zap.Error(err))
		response.Internal(c, "failed to list testimonials")
		return
	}
	response.OK(c, nonNil(list))
}

// VideoURL handles GET /api/admin/testimonials/:id/video-url. Returns a presigned review link.
func (h *Handler) VideoURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid testimonial id")
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "testimonial not found")
			return
		}
		h.logger.Error("get testimonial failed", zap.Error(err), zap.String("testimonial_id", id.String()))
		response.Internal(c, "failed to load testimonial")
		return
	}
	if t.Kind != models.TestimonialVideo || t.VideoKey == "" {
		response.BadRequest(c, "testimonial has no stored video")
		return
	}
	if h.presigner == nil {
		response.ServiceUnavailable(c, "object storage not configured")
		return
	}
	url, expire, err := h.presigner.PresignTestimonial(c.Request.Context(), t.VideoKey)
	if err != nil {
		h.logger.Error("presign testimonial failed", zap.Error(err), zap.String("testimonial_id", id.String()))
		response.Internal(c, "failed to generate video URL")
		return
	}
	response.OK(c, gin.H{"video_url": url, "expires_in": int(expire.Seconds())})
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func nonNil(list []models.Testimonial) []models.Testimonial {
	if list == nil {
		return []models.Testimonial{}
	}
	return list
}
