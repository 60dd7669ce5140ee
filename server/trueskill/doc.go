// Package trueskill computes incremental TrueSkill-style rating updates for
// pairwise outcomes.
//
// A caller builds Parameters once per rating domain, wraps competitors as
// Rating values (SkillBasedRating, ConstantRating or a RateableTotality of
// either), and builds an Event from a winner, a loser and a weight in
// (0, 1]. The Event computes its statistics once; Apply (or
// UpdateMeanAndVariance on each side) then moves every participating rating.
//
// The stored "variance" of a rating is used as a standard deviation: it is
// squared before it enters the spread and update formulas, while a
// totality sums its children's variance linearly.
package trueskill
