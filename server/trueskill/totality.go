package trueskill

import "github.com/pkg/errors"

// RateableTotality is a composite rating, e.g. a team. Its mean, variance,
// beta count and spread contribution are sums over its children, read
// live on every call.
//
// A child belongs to at most one place in a tree and a totality never
// contains itself; Add enforces both.
type RateableTotality struct {
	name    string
	ratings []Rating
}

func NewRateableTotality(name string, ratings ...Rating) (*RateableTotality, error) {
	t := &RateableTotality{name: name}
	for _, r := range ratings {
		if err := t.Add(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *RateableTotality) Name() string { return t.name }
func (t *RateableTotality) Len() int     { return len(t.ratings) }

// Ratings returns the children in order. The slice is a copy.
func (t *RateableTotality) Ratings() []Rating {
	out := make([]Rating, len(t.ratings))
	copy(out, t.ratings)
	return out
}

// Add appends r as the last child.
func (t *RateableTotality) Add(r Rating) error {
	if isNil(r) {
		return errors.Wrapf(ErrNilRating, "totality %q", t.name)
	}
	if r == Rating(t) || contains(r, t) {
		return errors.Wrapf(ErrCycle, "totality %q", t.name)
	}
	mine := map[Rating]struct{}{}
	_ = collect(t, mine)
	theirs := map[Rating]struct{}{}
	if err := collect(r, theirs); err != nil {
		return errors.Wrapf(err, "totality %q", t.name)
	}
	for n := range theirs {
		if _, ok := mine[n]; ok {
			return errors.Wrapf(ErrDuplicateRating, "totality %q", t.name)
		}
	}
	t.ratings = append(t.ratings, r)
	return nil
}

func (t *RateableTotality) Mean() float64 {
	var sum float64
	for _, r := range t.ratings {
		sum += r.Mean()
	}
	return sum
}

// Variance sums the children's variance linearly.
func (t *RateableTotality) Variance() float64 {
	var sum float64
	for _, r := range t.ratings {
		sum += r.Variance()
	}
	return sum
}

func (t *RateableTotality) BetaCount() int {
	var sum int
	for _, r := range t.ratings {
		sum += r.BetaCount()
	}
	return sum
}

// SigmaVarianceForStdDev sums the children's squared contributions; it is
// not the square of Variance.
func (t *RateableTotality) SigmaVarianceForStdDev() float64 {
	var sum float64
	for _, r := range t.ratings {
		sum += r.SigmaVarianceForStdDev()
	}
	return sum
}

// UpdateMean ignores dir and moves every child in the direction the event
// gives the totality itself, so a nested totality that is neither winner
// nor loser moves its children down.
func (t *RateableTotality) UpdateMean(e *Event, dir Direction) {
	// mean-only staging never fails
	_ = update(t, e, dir, partMean)
}

func (t *RateableTotality) UpdateVariance(e *Event) error {
	return update(t, e, Unspecified, partVariance)
}

func (t *RateableTotality) UpdateMeanAndVariance(e *Event) error {
	return update(t, e, Unspecified, partBoth)
}

func (t *RateableTotality) Clone() Rating {
	cp := &RateableTotality{name: t.name, ratings: make([]Rating, len(t.ratings))}
	for i, r := range t.ratings {
		cp.ratings[i] = r.Clone()
	}
	return cp
}

func (t *RateableTotality) children() []Rating { return t.ratings }

func (t *RateableTotality) stage(e *Event, dir Direction, parts part, ops []func()) ([]func(), error) {
	if parts&partMean != 0 {
		dir = e.DirectionOfWeight(t)
	}
	var err error
	for _, r := range t.ratings {
		if ops, err = r.stage(e, dir, parts, ops); err != nil {
			return ops, err
		}
	}
	return ops, nil
}

// --- tree helpers ---

// isNil also catches typed nil pointers stored in a Rating.
func isNil(r Rating) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *SkillBasedRating:
		return v == nil
	case *ConstantRating:
		return v == nil
	case *RateableTotality:
		return v == nil
	}
	return false
}

// contains reports whether target sits anywhere below root.
func contains(root, target Rating) bool {
	for _, c := range root.children() {
		if c == target || contains(c, target) {
			return true
		}
	}
	return false
}

// collect adds root and everything below it to seen.
func collect(root Rating, seen map[Rating]struct{}) error {
	if _, ok := seen[root]; ok {
		return ErrDuplicateRating
	}
	seen[root] = struct{}{}
	for _, c := range root.children() {
		if err := collect(c, seen); err != nil {
			return err
		}
	}
	return nil
}
