package evaluation

import "math"

// Tie is the Best value when both models score the same RMSE.
const Tie = "TIE"

// Comparison ranks two evaluated models by RMSE.
type Comparison struct {
	ModelA   string `json:"model_a"`
	ModelB   string `json:"model_b"`
	MetricsA Report `json:"metrics_a"`
	MetricsB Report `json:"metrics_b"`
	Best     string `json:"best_model"`
}

// Compare returns the model with the lower RMSE. A missing or undefined
// RMSE ranks last.
func Compare(a, b Report, nameA, nameB string) Comparison {
	c := Comparison{ModelA: nameA, ModelB: nameB, MetricsA: a, MetricsB: b}

	ra, rb := rmseOrInf(a), rmseOrInf(b)
	switch {
	case ra < rb:
		c.Best = nameA
	case rb < ra:
		c.Best = nameB
	default:
		c.Best = Tie
	}
	return c
}

func rmseOrInf(r Report) float64 {
	v := r.Get(RMSE)
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}
