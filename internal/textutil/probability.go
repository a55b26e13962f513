package textutil

// Probability bands used to highlight transcription confidence.
const (
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"

	lowProbability  = 0.7
	highProbability = 0.8
)

// ProbabilityBand classifies a probability: below 0.7 is low, above 0.8 is
// high and everything in between is medium.
func ProbabilityBand(probability float64) string {
	switch {
	case probability < lowProbability:
		return BandLow
	case probability > highProbability:
		return BandHigh
	default:
		return BandMedium
	}
}
