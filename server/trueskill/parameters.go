package trueskill

import (
	"math"

	"github.com/pkg/errors"
)

// Parameters holds the tuning constants of one rating domain.
//
//	StaticPerformanceSpread    = beta
//	ConstantAdditionalVariance = tau
type Parameters struct {
	StaticPerformanceSpread    float64 // beta (> 0)
	ConstantAdditionalVariance float64 // tau  (>= 0)
}

// DefaultParameters returns the usual 25/6, 25/300 pair for a mean of 25.
func DefaultParameters() Parameters {
	return Parameters{StaticPerformanceSpread: 25.0 / 6.0, ConstantAdditionalVariance: 25.0 / 300.0}
}

// NewParameters validates beta and tau.
func NewParameters(beta, tau float64) (Parameters, error) {
	p := Parameters{StaticPerformanceSpread: beta, ConstantAdditionalVariance: tau}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

func (p Parameters) Beta() float64 { return p.StaticPerformanceSpread }
func (p Parameters) Tau() float64  { return p.ConstantAdditionalVariance }

// Validate reports whether beta > 0 and tau >= 0, both finite.
func (p Parameters) Validate() error {
	if !finite(p.StaticPerformanceSpread) || p.StaticPerformanceSpread <= 0 {
		return errors.Wrapf(ErrInvalidParameters, "beta=%v", p.StaticPerformanceSpread)
	}
	if !finite(p.ConstantAdditionalVariance) || p.ConstantAdditionalVariance < 0 {
		return errors.Wrapf(ErrInvalidParameters, "tau=%v", p.ConstantAdditionalVariance)
	}
	return nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
