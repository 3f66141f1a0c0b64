package evaluation

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/errs"
)

// Epsilon floors denominators that may be zero.
const Epsilon = 1e-8

// Metric names, in report order.
const (
	MAE                  = "MAE"
	MSE                  = "MSE"
	RMSE                 = "RMSE"
	MAPE                 = "MAPE"
	SMAPE                = "SMAPE"
	WAPE                 = "WAPE"
	R2                   = "R2"
	Bias                 = "Bias"
	MASE                 = "MASE"
	ResidualStd          = "Residual Std"
	Skewness             = "Skewness"
	Kurtosis             = "Kurtosis"
	DirectionalAccuracy  = "Directional Accuracy"
	ConfidenceScore      = "Confidence Score"
	VolatilityErrorRatio = "Volatility Error Ratio"
)

var names = []string{
	MAE, MSE, RMSE, MAPE, SMAPE, WAPE, R2, Bias, MASE,
	ResidualStd, Skewness, Kurtosis,
	DirectionalAccuracy, ConfidenceScore, VolatilityErrorRatio,
}

// Names returns the metric names in report order.
func Names() []string {
	return slices.Clone(names)
}

// Report maps metric names to values. Undefined metrics hold NaN.
type Report map[string]float64

// Get returns the value of a metric, NaN when absent or undefined.
func (r Report) Get(name string) float64 {
	v, ok := r[name]
	if !ok {
		return math.NaN()
	}
	return v
}

// Defined reports whether a metric has a finite value.
func (r Report) Defined(name string) bool {
	v := r.Get(name)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MarshalJSON writes the metrics in report order with undefined values as null.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if !r.Defined(name) {
			buf.WriteString("null")
			continue
		}
		val, err := json.Marshal(r[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a report written by MarshalJSON; null becomes NaN.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Report, len(raw))
	for k, v := range raw {
		if v == nil {
			out[k] = math.NaN()
		} else {
			out[k] = *v
		}
	}
	*r = out
	return nil
}

// Evaluate scores yPred against yTrue. Both must have the same length of at
// least one. MASE, Directional Accuracy and Volatility Error Ratio need two
// points and are NaN otherwise.
func Evaluate(yTrue, yPred []float64) (Report, error) {
	n := len(yTrue)
	if n != len(yPred) || n == 0 {
		return nil, errs.New(errs.ErrLengthMismatch, "evaluation.Evaluate", "%d true values and %d predictions", n, len(yPred))
	}
	fn := float64(n)

	residuals := make([]float64, n)
	floats.SubTo(residuals, yTrue, yPred)

	var absSum, sqSum, ape, sape, absTrue float64
	for i, e := range residuals {
		absSum += math.Abs(e)
		sqSum += e * e

		t := yTrue[i]
		if t == 0 {
			t = Epsilon
		}
		ape += math.Abs(e / t)
		sape += 2 * math.Abs(yPred[i]-yTrue[i]) / (math.Abs(yTrue[i]) + math.Abs(yPred[i]) + Epsilon)
		absTrue += math.Abs(yTrue[i])
	}

	mae := absSum / fn
	mse := sqSum / fn
	mape := ape / fn * 100

	resMean, resVar := stat.PopMeanVariance(residuals, nil)
	resStd := math.Sqrt(resVar)
	skew, kurt := moments(residuals, resMean, resStd+Epsilon)

	r := Report{
		MAE:                  mae,
		MSE:                  mse,
		RMSE:                 math.Sqrt(mse),
		MAPE:                 mape,
		SMAPE:                sape / fn * 100,
		WAPE:                 absSum / (absTrue + Epsilon) * 100,
		R2:                   rSquared(yTrue, sqSum),
		Bias:                 resMean,
		MASE:                 math.NaN(),
		ResidualStd:          resStd,
		Skewness:             skew,
		Kurtosis:             kurt,
		DirectionalAccuracy:  math.NaN(),
		ConfidenceScore:      math.Max(0, 100-mape),
		VolatilityErrorRatio: math.NaN(),
	}

	if n >= 2 {
		dTrue := diff(yTrue)
		dPred := diff(yPred)

		var naive float64
		for _, d := range dTrue {
			naive += math.Abs(d)
		}
		r[MASE] = mae / (naive/float64(len(dTrue)) + Epsilon)

		hits := 0
		for i := range dTrue {
			if sign(dTrue[i]) == sign(dPred[i]) {
				hits++
			}
		}
		r[DirectionalAccuracy] = float64(hits) / float64(len(dTrue)) * 100

		_, vTrue := stat.PopMeanVariance(dTrue, nil)
		_, vPred := stat.PopMeanVariance(dPred, nil)
		r[VolatilityErrorRatio] = math.Sqrt(vPred) / (math.Sqrt(vTrue) + Epsilon)
	}
	return r, nil
}

// rSquared is 1 - SSres/SStot. With constant truth it is 1 for a perfect fit
// and 0 otherwise.
func rSquared(yTrue []float64, ssRes float64) float64 {
	mean := stat.Mean(yTrue, nil)
	var ssTot float64
	for _, v := range yTrue {
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// moments returns the third and fourth standardised moments (kurtosis not
// in excess form).
func moments(x []float64, mean, std float64) (skew, kurt float64) {
	var m3, m4 float64
	for _, v := range x {
		d := v - mean
		m3 += d * d * d
		m4 += d * d * d * d
	}
	n := float64(len(x))
	return m3 / n / math.Pow(std, 3), m4 / n / math.Pow(std, 4)
}

func diff(x []float64) []float64 {
	out := make([]float64, len(x)-1)
	for i := range out {
		out[i] = x[i+1] - x[i]
	}
	return out
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
