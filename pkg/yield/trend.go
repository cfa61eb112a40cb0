package yield

// Trend is an ordinary-least-squares fit of values against their index.
type Trend struct {
	Slope         float64 `json:"slope"`
	Mean          float64 `json:"mean"`
	PercentChange float64 `json:"percent_change"` // slope × n / mean × 100
}

// LinearTrend fits y = a + slope·x over x = 0..n-1 using the closed form
//
//	slope = (nΣxy − ΣxΣy) / (nΣx² − (Σx)²)
//
// ok is false when the fit is degenerate: fewer than two values, a zero
// denominator or a zero mean. Degenerate fits report a zero Trend.
func LinearTrend(values []float64) (tr Trend, ok bool) {
	n := float64(len(values))
	if len(values) < 2 {
		return Trend{}, false
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return Trend{}, false
	}
	mean := sumY / n
	if mean == 0 {
		return Trend{}, false
	}

	slope := (n*sumXY - sumX*sumY) / denom
	return Trend{
		Slope:         slope,
		Mean:          mean,
		PercentChange: slope * n / mean * 100,
	}, true
}
