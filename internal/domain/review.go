package domain

import "math"

// ReviewStats holds the review count of a hotel and its rounded mean rating.
type ReviewStats struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// NewReviewStats rounds sum/count half-up. A zero count yields a zero rating.
func NewReviewStats(count int, sum float64) ReviewStats {
	if count <= 0 {
		return ReviewStats{}
	}
	return ReviewStats{
		Rating: int(math.Floor(sum/float64(count) + 0.5)),
		Count:  count,
	}
}
