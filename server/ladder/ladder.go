// Package ladder keeps persistent player ratings and rates outcomes between
// them with the trueskill core. One side of an outcome is either a single
// player or, when it lists several players, a team totality.
package ladder

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"partial-trueskill/server/trueskill"
)

var (
	ErrNotFound       = errors.New("ladder: not found")
	ErrInvalidOutcome = errors.New("ladder: invalid outcome")
	ErrInvalidPlayer  = errors.New("ladder: invalid player")
)

type Kind string

const (
	KindSkill    Kind = "skill"    // ordinary skill
	KindConstant Kind = "constant" // lockable, outside the beta term
)

// Player is the stored form of one leaf rating.
type Player struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Mean      float64   `json:"mean"`
	Variance  float64   `json:"variance"`
	Locked    bool      `json:"locked"`
	Events    int       `json:"events"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Conservative is mean - 3*variance, the usual displayed skill.
func (p Player) Conservative() float64 { return p.Mean - 3*p.Variance }

func (p Player) validate() error {
	if p.ID == "" {
		return errors.Wrap(ErrInvalidPlayer, "empty id")
	}
	switch p.Kind {
	case KindSkill:
		if p.Locked {
			return errors.Wrapf(ErrInvalidPlayer, "%s: only constant players can be locked", p.ID)
		}
	case KindConstant:
	default:
		return errors.Wrapf(ErrInvalidPlayer, "%s: unknown kind %q", p.ID, p.Kind)
	}
	if _, err := p.rating(); err != nil {
		return errors.Wrapf(ErrInvalidPlayer, "%s: %v", p.ID, err)
	}
	return nil
}

func (p Player) rating() (trueskill.Rating, error) {
	if p.Kind == KindConstant {
		return trueskill.NewConstantRating(p.Locked, p.Mean, p.Variance)
	}
	return trueskill.NewSkillBasedRating(p.Mean, p.Variance)
}

// Outcome is one decided match. A nil Weight means a full win (1); any
// given value goes to the event unchanged.
type Outcome struct {
	Name    string   `json:"name"`
	Weight  *float64 `json:"weight,omitempty"`
	Winners []string `json:"winners"`
	Losers  []string `json:"losers"`
}

func (o Outcome) weight() float64 {
	if o.Weight == nil {
		return 1
	}
	return *o.Weight
}

func (o Outcome) validate() error {
	if len(o.Winners) == 0 || len(o.Losers) == 0 {
		return errors.Wrap(ErrInvalidOutcome, "both sides need at least one player")
	}
	seen := make(map[string]string, len(o.Winners)+len(o.Losers))
	for _, sd := range []struct {
		name string
		ids  []string
	}{{"winners", o.Winners}, {"losers", o.Losers}} {
		side := sd.name
		for _, id := range sd.ids {
			if id == "" {
				return errors.Wrapf(ErrInvalidOutcome, "%s: empty player id", side)
			}
			if prev, ok := seen[id]; ok {
				return errors.Wrapf(ErrInvalidOutcome, "%s listed in %s and %s", id, prev, side)
			}
			seen[id] = side
		}
	}
	return nil
}

// Change records one player's rating before and after an event.
type Change struct {
	PlayerID       string  `json:"player_id"`
	Side           string  `json:"side"` // winner | loser
	MeanBefore     float64 `json:"mean_before"`
	VarianceBefore float64 `json:"variance_before"`
	MeanAfter      float64 `json:"mean_after"`
	VarianceAfter  float64 `json:"variance_after"`
}

// Result is a rated outcome with the statistics of its event.
type Result struct {
	EventID       int64     `json:"event_id"`
	Name          string    `json:"name"`
	Weight        float64   `json:"weight"`
	Beta          float64   `json:"beta"`
	Tau           float64   `json:"tau"`
	Delta         float64   `json:"delta"`
	C             float64   `json:"c"`
	ZFactor       float64   `json:"z_factor"`
	MeanScale     float64   `json:"mean_scale"`
	VarianceScale float64   `json:"variance_scale"`
	Changes       []Change  `json:"changes"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryEntry is one event as seen by a single player.
type HistoryEntry struct {
	EventID   int64     `json:"event_id"`
	EventName string    `json:"event_name"`
	Weight    float64   `json:"weight"`
	Change    Change    `json:"change"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists players and rated events.
type Store interface {
	Player(ctx context.Context, id string) (Player, error)
	// Players returns the stored players among ids; unknown ids are absent.
	Players(ctx context.Context, ids []string) (map[string]Player, error)
	SavePlayer(ctx context.Context, p Player) error
	// Leaderboard orders by mean, highest first. limit <= 0 means all.
	Leaderboard(ctx context.Context, limit int) ([]Player, error)
	// RecordResult stores the event and its players in one step and
	// returns the event id.
	RecordResult(ctx context.Context, res *Result, players []Player) (int64, error)
	History(ctx context.Context, playerID string, limit int) ([]HistoryEntry, error)
}
