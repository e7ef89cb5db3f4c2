package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lahiru-voiceai/site/internal/models"
	"github.com/lahiru-voiceai/site/pkg/metrics"
	"github.com/lahiru-voiceai/site/pkg/queue"
)

type memStore struct {
	err  error
	msgs []*models.ContactMessage
}

func (s *memStore) Create(ctx context.Context, m *models.ContactMessage) error {
	if s.err != nil {
		return s.err
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	s.msgs = append(s.msgs, m)
	return nil
}

func (s *memStore) List(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	var out []models.ContactMessage
	for i := len(s.msgs) - 1; i >= 0; i-- {
		out = append(out, *s.msgs[i])
	}
	return out, nil
}

func setup(t *testing.T, store *memStore) (*gin.Engine, *queue.Queue, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	q := queue.NewQueue(rdb, nil)
	m := metrics.New(prometheus.NewRegistry())

	h := NewHandler(store, q, m, nil)
	r := gin.New()
	r.POST("/api/contact", h.Create)
	r.GET("/api/admin/contacts", h.List)
	return r, q, m
}

func TestCreateStoresAndNotifies(t *testing.T) {
	store := &memStore{}
	r, q, m := setup(t, store)

	body := `{"name":"Priya","email":"priya@example.com","message":"Can your agent book appointments?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, store.msgs, 1)
	assert.Equal(t, models.ContactStatusNew, store.msgs[0].Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactMessages.WithLabelValues(metrics.OutcomeSuccess)))

	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "new", env.Data["status"])
	assert.Equal(t, "priya@example.com", env.Data["email"])

	job, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, queue.JobTypeContactReceived, job.Type)
}

func TestCreateAcceptsForm(t *testing.T) {
	store := &memStore{}
	r, _, _ := setup(t, store)

	form := url.Values{"name": {"Li"}, "email": {"li@example.com"}, "message": {"Hi"}}
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.msgs, 1)
}

func TestCreateValidation(t *testing.T) {
	cases := map[string]string{
		"missing name":  `{"email":"a@b.co","message":"hi"}`,
		"bad email":     `{"name":"A","email":"not-an-email","message":"hi"}`,
		"blank message": `{"name":"A","email":"a@b.co","message":"   "}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := &memStore{}
			r, _, m := setup(t, store)
			req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, store.msgs)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ContactMessages.WithLabelValues(metrics.OutcomeValidationError)))
		})
	}
}

func TestCreateStoreFailure(t *testing.T) {
	store := &memStore{err: errors.New("db down")}
	r, q, _ := setup(t, store)

	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		bytes.NewBufferString(`{"name":"A","email":"a@b.co","message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	job, err := q.Dequeue(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, job, "no notification for an unsaved message")
}

func TestListNewestFirst(t *testing.T) {
	store := &memStore{}
	r, _, _ := setup(t, store)
	for _, n := range []string{"first", "second"} {
		require.NoError(t, store.Create(context.Background(), &models.ContactMessage{Name: n, Email: "x@y.z", Message: "m", Status: models.ContactStatusNew}))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data []models.ContactMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, "second", env.Data[0].Name)
}
