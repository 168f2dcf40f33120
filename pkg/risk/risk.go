// Package risk classifies supplier and delivery risk from aggregated
// scores. Classification is an ordered ladder of threshold checks,
// first match wins, decoupled from the aggregation model so the same
// rules serve every dashboard.
package risk

// Classification labels.
const (
	LevelLow      = "Low"
	LevelMedium   = "Medium"
	LevelHigh     = "High"
	LevelCritical = "Critical"

	// NeedMoreData is returned whenever the grouped sample is too small
	// to classify, regardless of how extreme the scores are.
	NeedMoreData = "Need More Data"
)

// MinSampleSize is the minimum number of grouped entities required
// before any classification beyond NeedMoreData is made.
const MinSampleSize = 3

// Thresholds defines the score ladder on a 0-10 scale. A score at or
// above Critical classifies Critical, then High, then Medium; below
// Medium is Low.
type Thresholds struct {
	Critical float64
	High     float64
	Medium   float64
}

// DefaultThresholds returns the standard 0-10 score ladder.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Critical: 8.5,
		High:     7.0,
		Medium:   4.0,
	}
}

// Classify maps a risk score to a level using the ladder.
func Classify(score float64, t Thresholds) string {
	switch {
	case score >= t.Critical:
		return LevelCritical
	case score >= t.High:
		return LevelHigh
	case score >= t.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// DeliveryInput summarizes grouped purchase orders for delivery risk
// classification.
type DeliveryInput struct {
	// Groups is the number of distinct grouped entities (POs) behind
	// the summary.
	Groups int
	// HighShare is the proportion of groups classified High or above.
	HighShare float64
	// AvgScore is the mean best-risk score across groups; nil when no
	// group carried a score.
	AvgScore *float64
}

// ClassifyDelivery derives a delivery risk level from the proportion of
// high-risk POs and the average score. Fewer than MinSampleSize groups
// always yields NeedMoreData.
func ClassifyDelivery(in DeliveryInput, t Thresholds) string {
	if in.Groups < MinSampleSize {
		return NeedMoreData
	}
	if in.AvgScore == nil {
		return NeedMoreData
	}

	switch {
	case in.HighShare >= 0.5 || *in.AvgScore >= t.Critical:
		return LevelCritical
	case in.HighShare >= 0.25 || *in.AvgScore >= t.High:
		return LevelHigh
	case *in.AvgScore >= t.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Display buckets for map nodes. These cut points are intentionally
// distinct from the entity classification ladder: map coloring wants
// fewer, coarser bands.
const (
	BucketSevere   = "severe"
	BucketElevated = "elevated"
	BucketStable   = "stable"
)

// Bucket maps a node's mean risk score to a display bucket.
func Bucket(score float64) string {
	switch {
	case score >= 7.5:
		return BucketSevere
	case score >= 5.0:
		return BucketElevated
	default:
		return BucketStable
	}
}
