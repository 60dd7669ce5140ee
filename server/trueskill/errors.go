package trueskill

import "github.com/pkg/errors"

// Domain errors. Callers match them with errors.Is; the returned values
// carry extra context from errors.Wrapf.
var (
	ErrInvalidWeight     = errors.New("trueskill: weight must satisfy 0 < weight <= 1")
	ErrInvalidParameters = errors.New("trueskill: invalid parameters")
	ErrInvalidRating     = errors.New("trueskill: invalid rating")
	ErrNilRating         = errors.New("trueskill: nil rating")
	ErrZeroSpread        = errors.New("trueskill: performance spread is zero")
	ErrDegenerate        = errors.New("trueskill: degenerate event statistics")
	ErrNegativeVariance  = errors.New("trueskill: variance update is negative")
	ErrCycle             = errors.New("trueskill: totality contains itself")
	ErrDuplicateRating   = errors.New("trueskill: rating appears more than once")
	ErrSharedRating      = errors.New("trueskill: winner and loser share a rating")
	ErrNotParticipant    = errors.New("trueskill: rating is neither winner nor loser")
)
