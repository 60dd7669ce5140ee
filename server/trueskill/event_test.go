package trueskill

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEqualRatings(t *testing.T) {
	p := DefaultParameters()
	winner := skill(t, 25, 25.0/3.0)
	loser := skill(t, 25, 25.0/3.0)
	e := event(t, 1.0, winner, loser, p)

	assert.Equal(t, 0.0, e.Delta())
	assert.Equal(t, 0.0, e.ZFactor())
	assert.InDelta(t, 13.176156917368248, e.C(), 1e-9)
	assert.InDelta(t, math.Sqrt(2/math.Pi), e.MeanScale(), 1e-9)
	assert.InDelta(t, 0.7979, e.V(), 1e-4)
	assert.InDelta(t, 2/math.Pi, e.VarianceScale(), 1e-9)
	assert.Equal(t, e.VarianceScale(), e.W())
	assert.Equal(t, e.StdDevOfPerformances(), e.C())

	require.NoError(t, Apply(e))

	assert.Greater(t, winner.Mean(), 25.0)
	assert.Less(t, loser.Mean(), 25.0)
	assert.Less(t, winner.Variance(), 25.0/3.0)
	assert.Less(t, loser.Variance(), 25.0/3.0)
	assert.InDelta(t, 29.205641392120604, winner.Mean(), 1e-9)
	assert.InDelta(t, 20.794358607879396, loser.Mean(), 1e-9)
	assert.InDelta(t, 7.194718157771766, winner.Variance(), 1e-9)
	assert.InDelta(t, 7.194718157771766, loser.Variance(), 1e-9)
}

func TestEventKeepsStatisticsAfterRatingsMove(t *testing.T) {
	winner := skill(t, 27, 6)
	loser := skill(t, 25, 7)
	e := event(t, 0.8, winner, loser, DefaultParameters())
	delta, c, z, v, w := e.Delta(), e.C(), e.ZFactor(), e.V(), e.W()

	require.NoError(t, winner.UpdateMeanAndVariance(e))
	require.NoError(t, loser.UpdateMeanAndVariance(e))

	assert.Equal(t, delta, e.Delta())
	assert.Equal(t, c, e.C())
	assert.Equal(t, z, e.ZFactor())
	assert.Equal(t, v, e.V())
	assert.Equal(t, w, e.W())

	fresh, err := e.CopyWith(EventOverrides{})
	require.NoError(t, err)
	assert.NotEqual(t, delta, fresh.Delta())
}

func TestEventInvalidWeight(t *testing.T) {
	for _, w := range []float64{0, -0.5, 1.0000001, 2, math.NaN(), math.Inf(1)} {
		_, err := NewEvent(w, skill(t, 25, 8), skill(t, 25, 8), DefaultParameters(), "bad")
		assert.ErrorIs(t, err, ErrInvalidWeight, "weight %v", w)
	}
}

func TestEventInvalidInputs(t *testing.T) {
	a := skill(t, 25, 8)
	b := skill(t, 25, 8)

	_, err := NewEvent(1, nil, b, DefaultParameters(), "")
	assert.ErrorIs(t, err, ErrNilRating)

	_, err = NewEvent(1, a, b, Parameters{}, "")
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = NewEvent(1, a, a, DefaultParameters(), "")
	assert.ErrorIs(t, err, ErrSharedRating)

	_, err = NewEvent(1, team(t, "x", a, skill(t, 20, 3)), team(t, "y", a), DefaultParameters(), "")
	// a sits on both sides
	assert.ErrorIs(t, err, ErrSharedRating)
}

func TestEventZeroSpread(t *testing.T) {
	a := constant(t, true, 30, 0)
	b := constant(t, true, 20, 0)
	_, err := NewEvent(1, a, b, DefaultParameters(), "frozen")
	assert.ErrorIs(t, err, ErrZeroSpread)
}

func TestEventDegenerateZ(t *testing.T) {
	p, err := NewParameters(0.01, 0)
	require.NoError(t, err)
	_, err = NewEvent(1, skill(t, -1e6, 0.01), skill(t, 1e6, 0.01), p, "upset")
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestEventCopyWith(t *testing.T) {
	winner := skill(t, 28, 5)
	loser := skill(t, 24, 6)
	e, err := NewEvent(0.6, winner, loser, DefaultParameters(), "semi")
	require.NoError(t, err)

	weight := e.Weight()
	same, err := e.CopyWith(EventOverrides{Weight: &weight})
	require.NoError(t, err)
	assert.Equal(t, e.Delta(), same.Delta())
	assert.Equal(t, e.StdDevOfPerformances(), same.StdDevOfPerformances())
	assert.Equal(t, e.ZFactor(), same.ZFactor())
	assert.Equal(t, e.MeanScale(), same.MeanScale())
	assert.Equal(t, e.VarianceScale(), same.VarianceScale())
	assert.Equal(t, "semi", same.Name())

	name := "final"
	half := 0.5
	other, err := e.CopyWith(EventOverrides{Weight: &half, Name: &name, Winner: loser, Loser: winner})
	require.NoError(t, err)
	assert.Equal(t, 0.5, other.Weight())
	assert.Equal(t, "final", other.Name())
	assert.Same(t, loser, other.Winner())
	assert.Equal(t, -e.Delta(), other.Delta())
	assert.Equal(t, e.Parameters(), other.Parameters())

	bad := 0.0
	_, err = e.CopyWith(EventOverrides{Weight: &bad})
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestEventDirection(t *testing.T) {
	winner := skill(t, 25, 8)
	loser := skill(t, 25, 8)
	outsider := skill(t, 25, 8)
	e := event(t, 1, winner, loser, DefaultParameters())

	assert.Equal(t, Won, e.DirectionOfWeight(winner))
	assert.Equal(t, Lost, e.DirectionOfWeight(loser))
	assert.Equal(t, Lost, e.DirectionOfWeight(outsider))

	d, err := e.Side(winner)
	require.NoError(t, err)
	assert.Equal(t, Won, d)
	d, err = e.Side(loser)
	require.NoError(t, err)
	assert.Equal(t, Lost, d)
	_, err = e.Side(outsider)
	assert.ErrorIs(t, err, ErrNotParticipant)
	_, err = e.Side(nil)
	assert.ErrorIs(t, err, ErrNilRating)

	// a structurally equal copy is a different rating
	assert.Equal(t, Lost, e.DirectionOfWeight(winner.Clone()))
}

func TestEventTeamSpread(t *testing.T) {
	a := skill(t, 25, 8)
	b := skill(t, 20, 4)
	c := skill(t, 30, 6)
	k := constant(t, true, 10, 2)
	winners := team(t, "w", a, b)
	losers := team(t, "l", c, k)
	p := DefaultParameters()
	e := event(t, 1, winners, losers, p)

	beta := p.Beta()
	want := math.Sqrt(3*beta*beta + 64 + 16 + 36 + 4)
	assert.InDelta(t, want, e.C(), 1e-12)
	assert.Equal(t, 45.0-40.0, e.Delta())
}
