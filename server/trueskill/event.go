package trueskill

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

var normalDist = distuv.UnitNormal

// Event is one pairwise outcome. Everything the ratings need to update
// themselves is derived once, in NewEvent, from the weight, the two ratings
// and the parameters. Later changes to the ratings are not picked up; build
// a new event with CopyWith instead.
type Event struct {
	weight     float64 // 0 < weight <= 1
	winner     Rating
	loser      Rating
	parameters Parameters
	name       string

	delta                float64
	stdDevOfPerformances float64
	zFactor              float64
	meanScale            float64
	varianceScale        float64
}

// NewEvent validates its inputs and computes the event statistics in
// dependency order: delta, c, z, v, w.
func NewEvent(weight float64, winner, loser Rating, parameters Parameters, name string) (*Event, error) {
	if !(weight > 0 && weight <= 1) {
		return nil, errors.Wrapf(ErrInvalidWeight, "event %q: weight=%v", name, weight)
	}
	if err := parameters.Validate(); err != nil {
		return nil, errors.Wrapf(err, "event %q", name)
	}
	if err := validateSides(winner, loser); err != nil {
		return nil, errors.Wrapf(err, "event %q", name)
	}

	e := &Event{weight: weight, winner: winner, loser: loser, parameters: parameters, name: name}
	e.delta = e.computeDelta()
	e.stdDevOfPerformances = e.computeStdDevOfPerformances()
	if e.stdDevOfPerformances == 0 {
		return nil, errors.Wrapf(ErrZeroSpread, "event %q", name)
	}
	if !finite(e.stdDevOfPerformances) {
		return nil, errors.Wrapf(ErrDegenerate, "event %q: c=%v", name, e.stdDevOfPerformances)
	}
	e.zFactor = e.computeZFactor()
	if normalDist.CDF(e.zFactor) == 0 {
		return nil, errors.Wrapf(ErrDegenerate, "event %q: cdf(z) underflows at z=%v", name, e.zFactor)
	}
	e.meanScale = e.computeMeanScale()
	e.varianceScale = e.computeVarianceScale()
	if !finite(e.meanScale) || !finite(e.varianceScale) {
		return nil, errors.Wrapf(ErrDegenerate, "event %q: v=%v w=%v", name, e.meanScale, e.varianceScale)
	}
	return e, nil
}

func validateSides(winner, loser Rating) error {
	if isNil(winner) || isNil(loser) {
		return ErrNilRating
	}
	w := map[Rating]struct{}{}
	if err := collect(winner, w); err != nil {
		return errors.Wrap(err, "winner")
	}
	l := map[Rating]struct{}{}
	if err := collect(loser, l); err != nil {
		return errors.Wrap(err, "loser")
	}
	for n := range l {
		if _, ok := w[n]; ok {
			return ErrSharedRating
		}
	}
	for n := range w {
		if n.children() == nil && (!finite(n.Mean()) || !finite(n.Variance()) || n.Variance() < 0) {
			return errors.Wrapf(ErrInvalidRating, "winner: mean=%v variance=%v", n.Mean(), n.Variance())
		}
	}
	for n := range l {
		if n.children() == nil && (!finite(n.Mean()) || !finite(n.Variance()) || n.Variance() < 0) {
			return errors.Wrapf(ErrInvalidRating, "loser: mean=%v variance=%v", n.Mean(), n.Variance())
		}
	}
	return nil
}

// --- derivations ---

func (e *Event) computeDelta() float64 {
	return e.winner.Mean() - e.loser.Mean()
}

// c = sqrt((n_w + n_l) * beta^2 + sigma_w^2 + sigma_l^2)
func (e *Event) computeStdDevOfPerformances() float64 {
	beta := e.parameters.StaticPerformanceSpread
	return math.Sqrt(
		float64(e.winner.BetaCount()+e.loser.BetaCount())*beta*beta +
			e.winner.SigmaVarianceForStdDev() + e.loser.SigmaVarianceForStdDev(),
	)
}

func (e *Event) computeZFactor() float64 {
	return e.delta / e.stdDevOfPerformances
}

// v = pdf(z) / cdf(z)
func (e *Event) computeMeanScale() float64 {
	return normalDist.Prob(e.zFactor) / normalDist.CDF(e.zFactor)
}

// w = v * (v + z)
func (e *Event) computeVarianceScale() float64 {
	return e.meanScale * (e.meanScale + e.zFactor)
}

// --- accessors ---

func (e *Event) Weight() float64        { return e.weight }
func (e *Event) Winner() Rating         { return e.winner }
func (e *Event) Loser() Rating          { return e.loser }
func (e *Event) Parameters() Parameters { return e.parameters }
func (e *Event) Name() string           { return e.name }

func (e *Event) Delta() float64                { return e.delta }
func (e *Event) StdDevOfPerformances() float64 { return e.stdDevOfPerformances }
func (e *Event) C() float64                    { return e.stdDevOfPerformances }
func (e *Event) ZFactor() float64              { return e.zFactor }
func (e *Event) MeanScale() float64            { return e.meanScale }
func (e *Event) V() float64                    { return e.meanScale }
func (e *Event) VarianceScale() float64        { return e.varianceScale }
func (e *Event) W() float64                    { return e.varianceScale }

// DirectionOfWeight returns Won when r is the winner itself (by identity)
// and Lost for anything else, including ratings not in the event.
func (e *Event) DirectionOfWeight(r Rating) Direction {
	if r == e.winner {
		return Won
	}
	return Lost
}

// Side is the strict form of DirectionOfWeight.
func (e *Event) Side(r Rating) (Direction, error) {
	switch {
	case isNil(r):
		return Unspecified, ErrNilRating
	case r == e.winner:
		return Won, nil
	case r == e.loser:
		return Lost, nil
	}
	return Unspecified, errors.Wrapf(ErrNotParticipant, "event %q", e.name)
}

// EventOverrides lists the inputs CopyWith replaces. Nil fields keep the
// original value.
type EventOverrides struct {
	Weight     *float64
	Winner     Rating
	Loser      Rating
	Parameters *Parameters
	Name       *string
}

// CopyWith builds a new event from e's inputs with o applied on top.
func (e *Event) CopyWith(o EventOverrides) (*Event, error) {
	weight, winner, loser, params, name := e.weight, e.winner, e.loser, e.parameters, e.name
	if o.Weight != nil {
		weight = *o.Weight
	}
	if o.Winner != nil {
		winner = o.Winner
	}
	if o.Loser != nil {
		loser = o.Loser
	}
	if o.Parameters != nil {
		params = *o.Parameters
	}
	if o.Name != nil {
		name = *o.Name
	}
	return NewEvent(weight, winner, loser, params, name)
}

// Apply updates the winner and the loser of e. Either both sides move or,
// on error, neither does.
func Apply(e *Event) error {
	ops, err := e.winner.stage(e, Unspecified, partBoth, nil)
	if err != nil {
		return errors.Wrapf(err, "event %q: winner", e.name)
	}
	ops, err = e.loser.stage(e, Unspecified, partBoth, ops)
	if err != nil {
		return errors.Wrapf(err, "event %q: loser", e.name)
	}
	for _, op := range ops {
		op()
	}
	return nil
}
