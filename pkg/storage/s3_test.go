package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestimonialKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "testimonials/1700000000123_ab12cd.webm", TestimonialKey(now, "ab12cd", ".webm"))
	assert.Equal(t, "testimonials/1700000000123_ab12cd.mp4", TestimonialKey(now, "ab12cd", "mp4"))
}

func TestRandomToken(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := RandomToken()
		require.NoError(t, err)
		assert.Regexp(t, re, tok)
		seen[tok] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestValidateVideoFileType(t *testing.T) {
	assert.True(t, ValidateVideoFileType("video/webm;codecs=vp9,opus", ""))
	assert.True(t, ValidateVideoFileType("", "clip.MOV"))
	assert.True(t, ValidateVideoFileType("application/octet-stream", "clip.mp4"))
	assert.False(t, ValidateVideoFileType("image/png", "photo.png"))
}

func TestVideoExtension(t *testing.T) {
	assert.Equal(t, ".mov", VideoExtension("video/quicktime", "clip.MOV"))
	assert.Equal(t, ".mp4", VideoExtension("video/mp4", "blob"))
	assert.Equal(t, ".webm", VideoExtension("", ""))
	assert.Equal(t, "video/webm", ContentTypeForExtension(".webm"))
}

func TestPublicObjectURL(t *testing.T) {
	s := &S3{cfg: S3Config{Region: "eu-west-1"}}
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/testimonials/x.webm", s.PublicObjectURL("b", "testimonials/x.webm"))

	s.cfg.Endpoint = "http://localhost:9000/"
	assert.Equal(t, "http://localhost:9000/b/testimonials/x.webm", s.PublicObjectURL("b", "testimonials/x.webm"))
}
