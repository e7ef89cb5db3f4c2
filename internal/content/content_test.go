package content

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lahiru-voiceai/site/internal/models"
)

func TestLoadEmbedded(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Lahiru Kavishka", s.Owner.Name)
	assert.Len(t, s.Demos, 2)
	assert.Len(t, s.UseCases, 5)
	assert.Len(t, s.Testimonials, 5)
	assert.Equal(t, 2, s.Consultation.SlotsOpen)
}

func TestAudioSourceURL(t *testing.T) {
	a := AudioSource{Local: "/audio/a.wav", External: "https://cdn/a.mp3", Fallback: "/audio/placeholder.mp3"}
	assert.Equal(t, "/audio/a.wav", a.URL(AudioLocal))
	assert.Equal(t, "https://cdn/a.mp3", a.URL(AudioExternal))
	assert.Equal(t, "/audio/placeholder.mp3", a.URL(AudioFallback))
	assert.Equal(t, "/audio/placeholder.mp3", a.URL("s3"))
	assert.Equal(t, "/audio/placeholder.mp3", AudioSource{Fallback: "/audio/placeholder.mp3"}.URL(AudioLocal))
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte(`
owner: {name: X}
demos:
  - id: a
    audio: {fallback: /f.mp3}
  - id: a
testimonials:
  - id: t1
    kind: tiktok
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "audio.fallback")
	assert.Contains(t, err.Error(), "unknown kind")

	_, err = Parse([]byte("owner: [unclosed"))
	assert.Error(t, err)
}

func TestFeedAppendsPublishedAfterCurated(t *testing.T) {
	written := models.NewWrittenTestimonial("", "Ops", "Fast setup")
	written.ID = uuid.New()
	video := models.NewVideoTestimonial("Jane Doe", "CEO", "https://cdn/v.webm", "testimonials/v.webm")
	video.ID = uuid.New()

	curated := []CuratedTestimonial{{ID: "c1", Kind: "quote", Content: "Great"}}
	items := Feed(curated, []models.Testimonial{*video, *written})

	require.Len(t, items, 3)
	assert.Equal(t, "c1", items[0].ID)
	assert.Equal(t, "video", items[1].Kind)
	assert.Equal(t, "https://cdn/v.webm", items[1].VideoURL)
	assert.Equal(t, DefaultVideoThumbnail, items[1].Thumbnail)
	assert.Equal(t, "quote", items[2].Kind)
	assert.Equal(t, "Fast setup", items[2].Content)
	assert.Equal(t, "Anonymous", items[2].Author)
}
