package trueskill

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func skill(t *testing.T, mean, variance float64) *SkillBasedRating {
	t.Helper()
	r, err := NewSkillBasedRating(mean, variance)
	require.NoError(t, err)
	return r
}

func constant(t *testing.T, isSet bool, mean, variance float64) *ConstantRating {
	t.Helper()
	r, err := NewConstantRating(isSet, mean, variance)
	require.NoError(t, err)
	return r
}

func team(t *testing.T, name string, ratings ...Rating) *RateableTotality {
	t.Helper()
	tt, err := NewRateableTotality(name, ratings...)
	require.NoError(t, err)
	return tt
}

func event(t *testing.T, weight float64, winner, loser Rating, p Parameters) *Event {
	t.Helper()
	e, err := NewEvent(weight, winner, loser, p, "")
	require.NoError(t, err)
	return e
}
