package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errSingular = errors.New("singular regression design")

// olsFit holds an ordinary least squares solution.
type olsFit struct {
	Coeffs    []float64
	StdErrors []float64
	SSR       float64
	NObs      int
}

// tStat returns the t-statistic of coefficient i.
func (f *olsFit) tStat(i int) float64 {
	return f.Coeffs[i] / f.StdErrors[i]
}

// aic is the Gaussian AIC as used for ADF lag selection.
func (f *olsFit) aic() float64 {
	n := float64(f.NObs)
	llf := -n / 2 * (math.Log(2*math.Pi) + math.Log(f.SSR/n) + 1)
	return -2*llf + 2*float64(len(f.Coeffs))
}

// ols regresses y on the columns of x.
func ols(x *mat.Dense, y []float64) (*olsFit, error) {
	n, k := x.Dims()
	if n != len(y) || n <= k {
		return nil, errSingular
	}

	yv := mat.NewVecDense(n, y)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, errSingular
		}
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), yv)

	var beta mat.VecDense
	beta.MulVec(&inv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	ssr := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}

	s2 := ssr / float64(n-k)
	coeffs := make([]float64, k)
	se := make([]float64, k)
	for i := 0; i < k; i++ {
		coeffs[i] = beta.AtVec(i)
		v := s2 * inv.At(i, i)
		if v <= 0 || math.IsNaN(v) {
			return nil, errSingular
		}
		se[i] = math.Sqrt(v)
	}

	return &olsFit{Coeffs: coeffs, StdErrors: se, SSR: ssr, NObs: n}, nil
}
