package pages

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lahiru-voiceai/site/internal/content"
	"github.com/lahiru-voiceai/site/internal/models"
)

type stubLister struct {
	list  []models.Testimonial
	err   error
	limit int
}

func (s *stubLister) ListPublished(_ context.Context, limit int) ([]models.Testimonial, error) {
	s.limit = limit
	return s.list, s.err
}

func newRouter(t *testing.T, lister TestimonialLister) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	site, err := content.Load()
	require.NoError(t, err)

	h := NewHandler(site, lister, Options{
		ContactEmail:   "hello@example.com",
		AudioSource:    content.AudioLocal,
		MaxUploadBytes: 50 << 20,
	}, nil)
	r := gin.New()
	r.GET("/", h.Home)
	r.GET("/feedback", h.Feedback)
	r.GET("/privacy", h.Privacy)
	r.GET("/terms", h.Terms)
	r.StaticFS("/static", Static())
	return r
}

func get(t *testing.T, r http.Handler, path string) (int, string, http.Header) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return w.Code, string(body), w.Header()
}

func TestHomeRendersCuratedThenPublished(t *testing.T) {
	published := models.NewWrittenTestimonial("Nimal Perera", "Founder", "Booked every missed call.")
	published.Status = models.ReviewPublished
	lister := &stubLister{list: []models.Testimonial{*published}}

	code, body, header := get(t, newRouter(t, lister), "/")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "text/html; charset=utf-8", header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Equal(t, FeedLimit, lister.limit)

	curated := strings.Index(body, "Alex Hormozi")
	record := strings.Index(body, "Nimal Perera")
	require.NotEqual(t, -1, curated)
	require.NotEqual(t, -1, record)
	assert.Less(t, curated, record, "curated entries come first")
	assert.Contains(t, body, "Booked every missed call.")

	assert.Contains(t, body, `src="/audio/lumina-spa.wav"`)
	assert.Contains(t, body, `data-fallback="/audio/placeholder.mp3"`)
	assert.Contains(t, body, "$4,880", "ROI seeded with the default inputs")
	assert.Contains(t, body, `id="contact-form"`)
}

func TestHomeFallsBackToCuratedFeed(t *testing.T) {
	code, body, _ := get(t, newRouter(t, &stubLister{err: errors.New("db down")}), "/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Alex Hormozi")
}

func TestFeedbackPage(t *testing.T) {
	code, body, _ := get(t, newRouter(t, nil), "/feedback")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `id="recorder"`)
	assert.Contains(t, body, `data-mode="idle"`)
	assert.Contains(t, body, `data-action="open_camera"`)
	assert.Contains(t, body, "/static/js/capture.js")
	assert.Contains(t, body, "up to 50 MB")
}

func TestLegalPages(t *testing.T) {
	r := newRouter(t, nil)
	for path, title := range map[string]string{"/privacy": "Privacy Policy", "/terms": "Terms &amp; Conditions"} {
		code, body, _ := get(t, r, path)
		assert.Equal(t, http.StatusOK, code, path)
		assert.Contains(t, body, "<h1>"+title+"</h1>", path)
		assert.Contains(t, body, "mailto:hello@example.com", path)
	}
}

func TestStaticAssets(t *testing.T) {
	r := newRouter(t, nil)
	for _, path := range []string{"/static/styles.css", "/static/js/site.js", "/static/js/capture.js"} {
		code, body, _ := get(t, r, path)
		assert.Equal(t, http.StatusOK, code, path)
		assert.NotEmpty(t, body, path)
	}
	code, _, _ := get(t, r, "/static/missing.js")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "4,880", groupThousands(4880))
	assert.Equal(t, "5,994,000", groupThousands(5994000))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "apex-dental-reception", slug("Apex Dental Reception"))
	assert.Equal(t, "service-dispatch-hvac", slug("Service Dispatch (HVAC)"))
}

func TestCaptureScriptOrdersFinalChunk(t *testing.T) {
	_, body, _ := get(t, newRouter(t, nil), "/static/js/capture.js")
	assert.Contains(t, body, "ws.send(e.data)", "chunks are sent synchronously as Blobs")
	assert.NotContains(t, body, "arrayBuffer()", "an async read would let recorder_stopped overtake the last chunk")
	assert.NotContains(t, body, "setTimeout")
}
