package testimonials

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/pkg/metrics"
)

type serviceFixture struct {
	log      *callLog
	objects  *fakeObjects
	store    *fakeStore
	notifier *fakeNotifier
	metrics  *metrics.Metrics
	svc      *Service
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	log := &callLog{}
	f := &serviceFixture{
		log:      log,
		objects:  &fakeObjects{log: log},
		store:    &fakeStore{log: log},
		notifier: &fakeNotifier{},
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	f.svc = NewService(f.objects, f.store, f.notifier, f.metrics, nil)
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	f.svc.token = func() (string, error) { return "a1b2c3", nil }
	return f
}

func videoSubmission(data []byte) Submission {
	return Submission{
		FullName: "Jane Doe",
		Role:     "CEO",
		Kind:     models.TestimonialVideo,
		Video: &VideoUpload{
			Body:        bytes.NewReader(data),
			Size:        int64(len(data)),
			ContentType: "video/webm",
			Ext:         ".webm",
		},
	}
}

func TestSubmitWrittenInsertsOnceWithoutUpload(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Submit(context.Background(), Submission{
		FullName: "Sam",
		Role:     "Ops Lead",
		Kind:     models.TestimonialWritten,
		Text:     "Cut our missed calls in half.",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"insert"}, f.log.all())
	require.Len(t, f.store.created, 1)
	assert.Equal(t, models.TestimonialWritten, rec.Kind)
	assert.Equal(t, "Cut our missed calls in half.", rec.Text())
	assert.Nil(t, rec.VideoURL)
	assert.Equal(t, models.ReviewPending, rec.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Submissions.WithLabelValues("written", metrics.OutcomeSuccess)))

	require.Len(t, f.notifier.payloads, 1)
	assert.Equal(t, rec.ID, f.notifier.payloads[0].TestimonialID)
}

func TestSubmitVideoUploadsBeforeInsert(t *testing.T) {
	f := newFixture(t)
	clip := []byte("webm-bytes")

	rec, err := f.svc.Submit(context.Background(), videoSubmission(clip))
	require.NoError(t, err)

	assert.Equal(t, []string{"upload", "insert"}, f.log.all())
	require.Len(t, f.objects.keys, 1)
	key := f.objects.keys[0]
	assert.Equal(t, "testimonials/1700000000123_a1b2c3.webm", key)
	assert.Equal(t, clip, f.objects.data)
	assert.Equal(t, "video/webm", f.objects.contentType)

	assert.Equal(t, models.TestimonialVideo, rec.Kind)
	assert.Equal(t, "https://cdn.example.com/"+key, rec.Video())
	assert.Equal(t, key, rec.VideoKey)
	assert.Nil(t, rec.Body)
	assert.Equal(t, "Jane Doe", rec.FullName)
	assert.Equal(t, "CEO", rec.Role)
	assert.Equal(t, float64(len(clip)), testutil.ToFloat64(f.metrics.UploadedBytes))
}

func TestSubmitVideoDefaultsExtension(t *testing.T) {
	f := newFixture(t)
	sub := videoSubmission([]byte("x"))
	sub.Video.Ext = ""
	sub.Video.ContentType = ""

	_, err := f.svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	require.Len(t, f.objects.keys, 1)
	assert.True(t, strings.HasSuffix(f.objects.keys[0], ".webm"))
	assert.Equal(t, "video/webm", f.objects.contentType)
}

func TestSubmitUploadFailureSkipsInsert(t *testing.T) {
	f := newFixture(t)
	f.objects.err = errBoom

	rec, err := f.svc.Submit(context.Background(), videoSubmission([]byte("clip")))
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrUpload)
	assert.Equal(t, []string{"upload"}, f.log.all())
	assert.Empty(t, f.store.created)
	assert.Empty(t, f.notifier.payloads)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Submissions.WithLabelValues("video", metrics.OutcomeUploadError)))
}

func TestSubmitWriteFailureAfterUpload(t *testing.T) {
	f := newFixture(t)
	f.store.err = errBoom

	_, err := f.svc.Submit(context.Background(), videoSubmission([]byte("clip")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, errBoom)
	// The uploaded object is not removed.
	assert.Equal(t, []string{"upload", "insert"}, f.log.all())
	assert.Len(t, f.objects.keys, 1)
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name string
		sub  Submission
	}{
		{"blank written text", Submission{Kind: models.TestimonialWritten, Text: "   "}},
		{"video without clip", Submission{Kind: models.TestimonialVideo}},
		{"video with empty clip", Submission{Kind: models.TestimonialVideo, Video: &VideoUpload{Body: bytes.NewReader(nil)}}},
		{"unknown kind", Submission{Kind: "audio", Text: "hi"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Submit(context.Background(), tc.sub)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, f.log.all())
		})
	}
}

func TestSubmitWithoutObjectStore(t *testing.T) {
	log := &callLog{}
	store := &fakeStore{log: log}
	svc := NewService(nil, store, nil, nil, nil)

	_, err := svc.Submit(context.Background(), videoSubmission([]byte("clip")))
	assert.ErrorIs(t, err, ErrUpload)
	assert.Empty(t, store.created)
}

func TestSubmitNotifyFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errBoom

	rec, err := f.svc.Submit(context.Background(), Submission{Kind: models.TestimonialWritten, Text: "Great"})
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Len(t, f.store.created, 1)
}

func TestNotificationExcerptTruncated(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("é", excerptLen+20)

	_, err := f.svc.Submit(context.Background(), Submission{Kind: models.TestimonialWritten, Text: long})
	require.NoError(t, err)
	require.Len(t, f.notifier.payloads, 1)
	assert.Equal(t, excerptLen+1, len([]rune(f.notifier.payloads[0].Excerpt)))
}

func TestListPublishedFiltersStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), Submission{Kind: models.TestimonialWritten, Text: "first"})
	require.NoError(t, err)
	second, err := f.svc.Submit(context.Background(), Submission{Kind: models.TestimonialWritten, Text: "second"})
	require.NoError(t, err)
	second.Status = models.ReviewPublished

	list, err := f.svc.ListPublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Text())

	all, err := f.svc.List(context.Background(), nil, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Text(), "newest first")
}
