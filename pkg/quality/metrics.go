// Package quality computes scalar quality measurements between successive
// reconstruction estimates and records them across iterations. Metrics are
// diagnostic only; they never influence the iteration control flow.
package quality

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"tomorecon/pkg/volume"
)

// ErrUnknownMetric is returned when a requested metric name is not
// recognized. Surfaces at tracker construction, before any iteration runs.
var ErrUnknownMetric = errors.New("quality: unknown metric")

// Metric identifies one scalar comparison between two volumes. Metric
// names are resolved once at configuration time, never per iteration.
type Metric int

const (
	// RMSE is the root mean square error between the two estimates.
	RMSE Metric = iota
	// CC is the Pearson correlation coefficient.
	CC
	// UQI is Wang-Bovik's universal quality index.
	UQI
	// SSIM is the structural similarity index over the whole volume.
	SSIM
)

// ParseMetric resolves a metric from its configuration name.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "RMSE":
		return RMSE, nil
	case "CC":
		return CC, nil
	case "UQI":
		return UQI, nil
	case "SSIM":
		return SSIM, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}

// String returns the configuration name of the metric.
func (m Metric) String() string {
	switch m {
	case RMSE:
		return "RMSE"
	case CC:
		return "CC"
	case UQI:
		return "UQI"
	case SSIM:
		return "SSIM"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// Compute evaluates the metric for a pair of estimates. When no previous
// estimate exists yet (first iteration) prev is nil and the result is NaN:
// no delta is available.
func (m Metric) Compute(prev, curr *volume.Volume) float64 {
	if prev == nil || !prev.SameShape(curr) {
		return math.NaN()
	}
	switch m {
	case RMSE:
		return rmse(prev.Data, curr.Data)
	case CC:
		return stat.Correlation(prev.Data, curr.Data, nil)
	case UQI:
		return uqi(prev.Data, curr.Data)
	case SSIM:
		return ssim(prev.Data, curr.Data)
	default:
		return math.NaN()
	}
}

func rmse(a, b []float64) float64 {
	mse := 0.0
	for i := range a {
		d := a[i] - b[i]
		mse += d * d
	}
	return math.Sqrt(mse / float64(len(a)))
}

// uqi computes the universal quality index
// Q = 4*cov*muX*muY / ((varX+varY)*(muX^2+muY^2)).
func uqi(a, b []float64) float64 {
	muX := stat.Mean(a, nil)
	muY := stat.Mean(b, nil)
	varX := stat.Variance(a, nil)
	varY := stat.Variance(b, nil)
	cov := stat.Covariance(a, b, nil)

	den := (varX + varY) * (muX*muX + muY*muY)
	if den == 0 {
		return 0
	}
	return 4 * cov * muX * muY / den
}

// ssim computes a single global SSIM value with the standard k1/k2
// stabilizers over the dynamic range of the pair.
func ssim(a, b []float64) float64 {
	const k1, k2 = 0.01, 0.03

	l := dynamicRange(a, b)
	c1 := (k1 * l) * (k1 * l)
	c2 := (k2 * l) * (k2 * l)

	muX := stat.Mean(a, nil)
	muY := stat.Mean(b, nil)
	varX := stat.Variance(a, nil)
	varY := stat.Variance(b, nil)
	cov := stat.Covariance(a, b, nil)

	num := (2*muX*muY + c1) * (2*cov + c2)
	den := (muX*muX + muY*muY + c1) * (varX + varY + c2)
	if den == 0 {
		return 0
	}
	return num / den
}

func dynamicRange(a, b []float64) float64 {
	if len(a) == 0 {
		return 1
	}
	min, max := a[0], a[0]
	for _, x := range a {
		min = math.Min(min, x)
		max = math.Max(max, x)
	}
	for _, x := range b {
		min = math.Min(min, x)
		max = math.Max(max, x)
	}
	if max == min {
		return 1
	}
	return max - min
}
