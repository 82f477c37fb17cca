package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// LinearForecast is a fitted line y = Slope*t + Intercept over a
// series indexed by integer tick.
type LinearForecast struct {
	Slope     float64
	Intercept float64
}

// At evaluates the fitted line at tick t.
func (f LinearForecast) At(t float64) float64 {
	return f.Slope*t + f.Intercept
}

// FitLinear fits an ordinary least-squares line to series, indexed
// 0..len(series)-1.
func FitLinear(series []float64) LinearForecast {
	if len(series) < 2 {
		return LinearForecast{}
	}
	xs := make([]float64, len(series))
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, series, nil, false)
	return LinearForecast{Slope: slope, Intercept: intercept}
}

// ExponentialForecast is a fitted curve y = Amplitude*e^(Rate*t),
// found by linear-regressing ln(y) and exponentiating back.
type ExponentialForecast struct {
	Amplitude float64
	Rate      float64
}

// At evaluates the fitted curve at tick t.
func (f ExponentialForecast) At(t float64) float64 {
	return f.Amplitude * math.Exp(f.Rate*t)
}

// FitExponential fits series to an exponential curve. Non-positive
// samples are excluded from the log-linear fit since ln is undefined
// for them; if fewer than two samples remain, returns the zero value.
func FitExponential(series []float64) ExponentialForecast {
	var xs, logYs []float64
	for i, y := range series {
		if y <= 0 {
			continue
		}
		xs = append(xs, float64(i))
		logYs = append(logYs, math.Log(y))
	}
	if len(xs) < 2 {
		return ExponentialForecast{}
	}
	intercept, slope := stat.LinearRegression(xs, logYs, nil, false)
	return ExponentialForecast{Amplitude: math.Exp(intercept), Rate: slope}
}
