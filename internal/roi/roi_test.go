package roi

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		name    string
		volume  int
		cost    float64
		calls   int
		perCall float64
		savings int64
	}{
		{"defaults", 1000, 5, 1000, 5, 4880},
		{"volume below minimum", 10, 5, 100, 5, 488},
		{"volume above maximum", 1_000_000, 2, 50000, 2, 94000},
		{"cost below minimum", 1000, 0.5, 1000, 1, 880},
		{"cost above maximum", 100, 500, 100, 100, 9988},
		{"fractional savings floor", 333, 1.5, 333, 1.5, 459},
		{"nan cost", 1000, math.NaN(), 1000, 1, 880},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Calculate(tc.volume, tc.cost)
			assert.Equal(t, tc.calls, e.MonthlyCalls)
			assert.Equal(t, tc.perCall, e.CostPerCall)
			assert.Equal(t, tc.savings, e.Savings)
		})
	}
}

func TestHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/roi", Handle)

	get := func(q string) Estimate {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/roi"+q, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var env struct {
			Data Estimate `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return env.Data
	}
	assert.Equal(t, int64(4880), get("").Savings)
	assert.Equal(t, int64(9760), get("?volume=2000&cost=5").Savings)
	assert.Equal(t, DefaultVolume, get("?volume=abc").MonthlyCalls, "invalid volume falls back")
	assert.Equal(t, MinVolume, get("?volume=5").MonthlyCalls)
}
