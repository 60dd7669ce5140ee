package trueskill

import (
	"math"

	"github.com/pkg/errors"
)

// StandardMeanUpdate returns the new mean of r after e:
//
//	mu' = mu + (weight * dir) * v * (sigma^2 + tau^2) / c
//
// Unspecified dir is taken from e.DirectionOfWeight(r). Nothing is mutated.
func StandardMeanUpdate(r Rating, e *Event, dir Direction) float64 {
	if dir == Unspecified {
		dir = e.DirectionOfWeight(r)
	}
	tau := e.parameters.ConstantAdditionalVariance
	sigma := r.Variance()
	return r.Mean() + (e.weight*float64(dir))*(e.meanScale*((sigma*sigma+tau*tau)/e.stdDevOfPerformances))
}

// StandardVarianceUpdate returns the new variance of r after e:
//
//	sigma'^2 = (sigma^2 + tau^2) * (1 - |weight| * w * (sigma^2 + tau^2) / c^2)
//
// and fails with ErrNegativeVariance when sigma'^2 < 0. Nothing is mutated.
func StandardVarianceUpdate(r Rating, e *Event) (float64, error) {
	tauSqr := e.parameters.ConstantAdditionalVariance * e.parameters.ConstantAdditionalVariance
	varianceSqr := r.Variance() * r.Variance()
	c := e.stdDevOfPerformances
	newVarianceSqr := (varianceSqr + tauSqr) * (1 - math.Abs(e.weight)*(e.varianceScale*((varianceSqr+tauSqr)/(c*c))))
	if newVarianceSqr < 0 || math.IsNaN(newVarianceSqr) {
		return 0, errors.Wrapf(ErrNegativeVariance, "event %q: sigma^2=%v", e.name, newVarianceSqr)
	}
	return math.Sqrt(newVarianceSqr), nil
}
