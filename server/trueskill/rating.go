package trueskill

import (
	"github.com/pkg/errors"
)

// Direction is the sign applied to a mean update.
type Direction int

const (
	Lost        Direction = -1
	Unspecified Direction = 0 // derive from the event
	Won         Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unspecified"
	}
}

// Rating is implemented by *SkillBasedRating, *ConstantRating and
// *RateableTotality only.
type Rating interface {
	Mean() float64
	Variance() float64
	BetaCount() int
	SigmaVarianceForStdDev() float64

	UpdateMean(e *Event, dir Direction)
	UpdateVariance(e *Event) error
	// UpdateMeanAndVariance updates the mean first and the variance second,
	// both from the pre-update state. Nothing changes when it fails.
	UpdateMeanAndVariance(e *Event) error

	// Clone deep-copies totalities and shallow-copies the other variants.
	Clone() Rating

	stage(e *Event, dir Direction, parts part, ops []func()) ([]func(), error)
	children() []Rating
}

// part selects which half of an update gets staged.
type part uint8

const (
	partMean part = 1 << iota
	partVariance

	partBoth = partMean | partVariance
)

// update computes every new value under r before assigning any of them.
func update(r Rating, e *Event, dir Direction, parts part) error {
	ops, err := r.stage(e, dir, parts, nil)
	if err != nil {
		return err
	}
	for _, op := range ops {
		op()
	}
	return nil
}

func validateInitial(mean, variance float64) error {
	if !finite(mean) {
		return errors.Wrapf(ErrInvalidRating, "mean=%v", mean)
	}
	if !finite(variance) || variance < 0 {
		return errors.Wrapf(ErrInvalidRating, "variance=%v", variance)
	}
	return nil
}

// stageLeaf appends the assignments for one leaf rating. The values are
// computed here, from the state as it is now. Only the variance half can
// fail; a mean-only stage always returns a nil error.
func stageLeaf(r Rating, mean, variance *float64, e *Event, dir Direction, parts part, ops []func()) ([]func(), error) {
	if parts&partMean != 0 {
		m := StandardMeanUpdate(r, e, dir)
		ops = append(ops, func() { *mean = m })
	}
	if parts&partVariance != 0 {
		v, err := StandardVarianceUpdate(r, e)
		if err != nil {
			return ops, err
		}
		ops = append(ops, func() { *variance = v })
	}
	return ops, nil
}

// --- SkillBasedRating ---

// SkillBasedRating is an ordinary, always updatable skill.
type SkillBasedRating struct {
	mean     float64
	variance float64
}

func NewSkillBasedRating(mean, variance float64) (*SkillBasedRating, error) {
	if err := validateInitial(mean, variance); err != nil {
		return nil, err
	}
	return &SkillBasedRating{mean: mean, variance: variance}, nil
}

func (r *SkillBasedRating) Mean() float64                   { return r.mean }
func (r *SkillBasedRating) Variance() float64               { return r.variance }
func (r *SkillBasedRating) BetaCount() int                  { return 1 }
func (r *SkillBasedRating) SigmaVarianceForStdDev() float64 { return r.variance * r.variance }
func (r *SkillBasedRating) children() []Rating              { return nil }

func (r *SkillBasedRating) UpdateMean(e *Event, dir Direction) {
	r.mean = StandardMeanUpdate(r, e, dir)
}

func (r *SkillBasedRating) UpdateVariance(e *Event) error {
	return update(r, e, Unspecified, partVariance)
}

func (r *SkillBasedRating) UpdateMeanAndVariance(e *Event) error {
	return update(r, e, Unspecified, partBoth)
}

func (r *SkillBasedRating) Clone() Rating {
	cp := *r
	return &cp
}

func (r *SkillBasedRating) stage(e *Event, dir Direction, parts part, ops []func()) ([]func(), error) {
	return stageLeaf(r, &r.mean, &r.variance, e, dir, parts, ops)
}

// --- ConstantRating ---

// ConstantRating is a skill that can be frozen. While set, updates leave it
// untouched; it never contributes to the beta term.
type ConstantRating struct {
	isSet    bool
	mean     float64
	variance float64
}

func NewConstantRating(isSet bool, mean, variance float64) (*ConstantRating, error) {
	if err := validateInitial(mean, variance); err != nil {
		return nil, err
	}
	return &ConstantRating{isSet: isSet, mean: mean, variance: variance}, nil
}

func (r *ConstantRating) IsSet() bool { return r.isSet }
func (r *ConstantRating) Lock()       { r.isSet = true }
func (r *ConstantRating) Unlock()     { r.isSet = false }

func (r *ConstantRating) Mean() float64                   { return r.mean }
func (r *ConstantRating) Variance() float64               { return r.variance }
func (r *ConstantRating) BetaCount() int                  { return 0 }
func (r *ConstantRating) SigmaVarianceForStdDev() float64 { return r.variance * r.variance }
func (r *ConstantRating) children() []Rating              { return nil }

func (r *ConstantRating) UpdateMean(e *Event, dir Direction) {
	if r.isSet {
		return
	}
	r.mean = StandardMeanUpdate(r, e, dir)
}

func (r *ConstantRating) UpdateVariance(e *Event) error {
	return update(r, e, Unspecified, partVariance)
}

func (r *ConstantRating) UpdateMeanAndVariance(e *Event) error {
	return update(r, e, Unspecified, partBoth)
}

func (r *ConstantRating) Clone() Rating {
	cp := *r
	return &cp
}

func (r *ConstantRating) stage(e *Event, dir Direction, parts part, ops []func()) ([]func(), error) {
	if r.isSet {
		return ops, nil
	}
	return stageLeaf(r, &r.mean, &r.variance, e, dir, parts, ops)
}
