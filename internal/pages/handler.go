package pages

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	g "maragu.dev/gomponents"

	"github.com/lahiru-voiceai/site/internal/content"
	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/internal/roi"
)

//go:embed static
var staticFiles embed.FS

// FeedLimit caps how many published records join the curated testimonials.
const FeedLimit = 24

// TestimonialLister returns published testimonials, newest first.
type TestimonialLister interface {
	ListPublished(ctx context.Context, limit int) ([]models.Testimonial, error)
}

type Options struct {
	OwnerName      string
	ContactEmail   string
	AudioSource    string
	MaxUploadBytes int64
}

type Handler struct {
	site         *content.Site
	testimonials TestimonialLister
	opts         Options
	logger       *zap.Logger
}

func NewHandler(site *content.Site, testimonials TestimonialLister, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OwnerName == "" {
		opts.OwnerName = site.Owner.Name
	}
	return &Handler{site: site, testimonials: testimonials, opts: opts, logger: logger}
}

// Static serves the embedded scripts and stylesheet.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Home renders the landing page. A failed testimonial read degrades to the curated feed.
func (h *Handler) Home(c *gin.Context) {
	var published []models.Testimonial
	if h.testimonials != nil {
		list, err := h.testimonials.ListPublished(c.Request.Context(), FeedLimit)
		if err != nil {
			h.logger.Warn("published testimonials unavailable", zap.Error(err))
		} else {
			published = list
		}
	}

	site := *h.site
	site.Owner.Name = h.opts.OwnerName
	h.render(c, HomePage(HomeData{
		Site:      &site,
		Feed:      content.Feed(h.site.Testimonials, published),
		AudioMode: h.opts.AudioSource,
		ROI:       roi.Calculate(roi.DefaultVolume, roi.DefaultCost),
	}))
}

func (h *Handler) Feedback(c *gin.Context) {
	h.render(c, FeedbackPage(h.opts.OwnerName, h.opts.MaxUploadBytes>>20))
}

func (h *Handler) Privacy(c *gin.Context) {
	h.render(c, PrivacyPage(h.opts.OwnerName, h.opts.ContactEmail))
}

func (h *Handler) Terms(c *gin.Context) {
	h.render(c, TermsPage(h.opts.OwnerName, h.opts.ContactEmail))
}

func (h *Handler) render(c *gin.Context, page g.Node) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(c.Writer); err != nil {
		h.logger.Error("render page", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
}
