package videogen

import "math"

// Per-second generation rates in USD. Used both by the provider EstimateCost
// implementations and by the job-level estimate below.
const (
	lumaRatePerSecond      = 0.03
	runwayRatePerSecond    = 0.05
	pikaRatePerSecond      = 0.03
	stabilityRatePerSecond = 0.015

	scriptFlatCost       = 0.01
	voiceCostPer30s      = 0.02
	defaultRatePerSecond = lumaRatePerSecond
)

var ratePerSecond = map[string]float64{
	"luma":      lumaRatePerSecond,
	"runway":    runwayRatePerSecond,
	"pika":      pikaRatePerSecond,
	"stability": stabilityRatePerSecond,
}

// RatePerSecond returns the per-second rate for a backend, falling back to
// the default rate for unknown names.
func RatePerSecond(provider string) float64 {
	if rate, ok := ratePerSecond[provider]; ok {
		return rate
	}
	return defaultRatePerSecond
}

// ScriptFlatCost is the fixed charge applied per generated script.
func ScriptFlatCost() float64 { return scriptFlatCost }

// EstimateJobCost computes the full-run estimate for a job: video generation
// plus flat script cost plus voice synthesis, rounded to cents. Recomputable
// at any time from config alone.
func EstimateJobCost(provider string, segments, segmentDuration int) float64 {
	totalSeconds := float64(segments * segmentDuration)
	video := totalSeconds * RatePerSecond(provider)
	voice := totalSeconds / 30.0 * voiceCostPer30s
	return math.Round((video+scriptFlatCost+voice)*100) / 100
}
