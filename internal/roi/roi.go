// Package roi estimates monthly savings from replacing human call handling
// with a voice agent.
package roi

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lahiru-voiceai/site/pkg/response"
)

const (
	MinVolume = 100
	MaxVolume = 50000
	MinCost   = 1.0
	MaxCost   = 100.0

	// AICostPerCall is the voice agent's cost per handled call in dollars.
	AICostPerCall = 0.12

	DefaultVolume = 1000
	DefaultCost   = 5.0
)

// Estimate is the result for one set of inputs, after clamping.
type Estimate struct {
	MonthlyCalls  int     `json:"monthlyCalls"`
	CostPerCall   float64 `json:"costPerCall"`
	AICostPerCall float64 `json:"aiCostPerCall"`
	HumanTotal    float64 `json:"humanTotal"`
	AITotal       float64 `json:"aiTotal"`
	Savings       int64   `json:"savings"`
}

// Calculate clamps volume to [MinVolume, MaxVolume] and cost to [MinCost, MaxCost]
// and returns floor(volume*cost - volume*AICostPerCall) as the monthly savings.
func Calculate(volume int, cost float64) Estimate {
	volume = min(max(volume, MinVolume), MaxVolume)
	if math.IsNaN(cost) {
		cost = MinCost
	}
	cost = min(max(cost, MinCost), MaxCost)

	human := float64(volume) * cost
	ai := float64(volume) * AICostPerCall
	return Estimate{
		MonthlyCalls:  volume,
		CostPerCall:   cost,
		AICostPerCall: AICostPerCall,
		HumanTotal:    human,
		AITotal:       ai,
		Savings:       int64(math.Floor(human - ai)),
	}
}

// Handle serves GET /api/roi?volume=&cost=. Missing or unparsable inputs use the defaults.
func Handle(c *gin.Context) {
	volume := DefaultVolume
	if v, err := strconv.Atoi(c.Query("volume")); err == nil {
		volume = v
	}
	cost := DefaultCost
	if v, err := strconv.ParseFloat(c.Query("cost"), 64); err == nil {
		cost = v
	}
	response.OK(c, Calculate(volume, cost))
}
