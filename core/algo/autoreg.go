package algo

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateFit is returned when an autoregressive model cannot be estimated.
var ErrDegenerateFit = errors.New("degenerate autoregressive fit")

// ARFit is a fitted autoregressive model with its prewhitened residuals.
type ARFit struct {
	Order  int
	Params []float64 // intercept followed by lag coefficients
	Mean   float64
	AIC    float64

	// Residuals holds observation minus fitted value plus Mean, for
	// observations Order through n-1 of the input.
	Residuals []float64
}

// ARFunc fits an autoregressive model of order at most maxLag.
type ARFunc func(values []float64, maxLag int) (*ARFit, error)

// ARLag is the order cap used when prewhitening for crossdating: min(n-1, floor(10·log10 n)).
func ARLag(n int) int {
	if n <= 1 {
		return 0
	}
	lag := int(math.Floor(10 * math.Log10(float64(n))))
	return min(n-1, lag)
}

// FitAR selects an AR order in [0, maxLag] by AIC and returns the refit model.
// maxLag is capped at n/2-1. All candidate orders are compared on the same
// sample so that their AIC values are comparable.
func FitAR(values []float64, maxLag int) (*ARFit, error) {
	n := len(values)
	if n < 3 {
		return nil, fmt.Errorf("%w: %d observations", ErrDegenerateFit, n)
	}
	for _, v := range values {
		if !finite(v) {
			return nil, fmt.Errorf("%w: non-finite observation", ErrDegenerateFit)
		}
	}
	maxLag = max(0, min(maxLag, n/2-1))

	best, bestAIC := -1, math.Inf(1)
	for p := 0; p <= maxLag; p++ {
		_, ssr, err := olsAR(values, p, maxLag)
		if err != nil {
			continue
		}
		nobs := float64(n - maxLag)
		aic := nobs*math.Log(ssr/nobs) + 2*float64(p+1)
		if aic < bestAIC || best < 0 {
			best, bestAIC = p, aic
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("%w: no order up to %d could be estimated", ErrDegenerateFit, maxLag)
	}

	fit, err := FitAROrder(values, best)
	if err != nil {
		return nil, err
	}
	fit.AIC = bestAIC
	return fit, nil
}

// FitAROrder fits an AR model of exactly the given order on all usable observations.
func FitAROrder(values []float64, order int) (*ARFit, error) {
	n := len(values)
	if order < 0 || n-order < order+2 {
		return nil, fmt.Errorf("%w: order %d needs more than %d observations", ErrDegenerateFit, order, n)
	}
	params, _, err := olsAR(values, order, order)
	if err != nil {
		return nil, err
	}

	mean := stat.Mean(values, nil)
	residuals := make([]float64, 0, n-order)
	for t := order; t < n; t++ {
		r := values[t] - predict(values, params, t) + mean
		if !finite(r) {
			return nil, fmt.Errorf("%w: non-finite residual", ErrDegenerateFit)
		}
		residuals = append(residuals, r)
	}
	return &ARFit{Order: order, Params: params, Mean: mean, Residuals: residuals}, nil
}

// olsAR regresses values[t] on a constant and values[t-1..t-p] for t >= start.
func olsAR(values []float64, p, start int) ([]float64, float64, error) {
	rows := len(values) - start
	cols := p + 1
	if rows < cols {
		return nil, 0, fmt.Errorf("%w: %d rows for %d parameters", ErrDegenerateFit, rows, cols)
	}

	x := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for r := range rows {
		t := start + r
		x.Set(r, 0, 1)
		for j := 1; j <= p; j++ {
			x.Set(r, j, values[t-j])
		}
		y.SetVec(r, values[t])
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDegenerateFit, err)
	}
	params := make([]float64, cols)
	for j := range cols {
		params[j] = beta.AtVec(j)
		if !finite(params[j]) {
			return nil, 0, fmt.Errorf("%w: non-finite coefficient", ErrDegenerateFit)
		}
	}

	var ssr float64
	for r := range rows {
		e := values[start+r] - predict(values, params, start+r)
		ssr += e * e
	}
	return params, ssr, nil
}

func predict(values, params []float64, t int) float64 {
	pred := params[0]
	for j := 1; j < len(params); j++ {
		pred += params[j] * values[t-j]
	}
	return pred
}
