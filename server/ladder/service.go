package ladder

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"

	"partial-trueskill/server/trueskill"
)

type Config struct {
	Parameters      trueskill.Parameters
	DefaultMean     float64
	DefaultVariance float64
	// AutoRegister creates unknown players from the defaults on first use.
	AutoRegister bool
	Debug        bool
}

// DefaultConfig is the 25 +/- 25/3 scale.
func DefaultConfig() Config {
	return Config{
		Parameters:      trueskill.DefaultParameters(),
		DefaultMean:     25,
		DefaultVariance: 25.0 / 3.0,
	}
}

// Service rates outcomes against a Store. Rate calls are serialized: a
// player shared by two outcomes is always read after the earlier write.
type Service struct {
	mu    sync.Mutex
	store Store
	cfg   Config
	now   func() time.Time
}

func NewService(store Store, cfg Config) (*Service, error) {
	if store == nil {
		return nil, errors.New("ladder: nil store")
	}
	if err := cfg.Parameters.Validate(); err != nil {
		return nil, err
	}
	def := Player{ID: "default", Kind: KindSkill, Mean: cfg.DefaultMean, Variance: cfg.DefaultVariance}
	if err := def.validate(); err != nil {
		return nil, errors.Wrap(err, "default rating")
	}
	return &Service{store: store, cfg: cfg, now: time.Now}, nil
}

func (s *Service) Parameters() trueskill.Parameters { return s.cfg.Parameters }

// Defaults is the starting rating of a new player.
func (s *Service) Defaults() (mean, variance float64) {
	return s.cfg.DefaultMean, s.cfg.DefaultVariance
}

// Register creates or replaces a player. An empty kind means skill.
func (s *Service) Register(ctx context.Context, p Player) (Player, error) {
	if p.Kind == "" {
		p.Kind = KindSkill
	}
	if err := p.validate(); err != nil {
		return Player{}, err
	}
	p.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SavePlayer(ctx, p); err != nil {
		return Player{}, errors.Wrapf(err, "save player %s", p.ID)
	}
	return p, nil
}

func (s *Service) Player(ctx context.Context, id string) (Player, error) {
	return s.store.Player(ctx, id)
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Player, error) {
	return s.store.Leaderboard(ctx, limit)
}

func (s *Service) History(ctx context.Context, id string, limit int) ([]HistoryEntry, error) {
	if _, err := s.store.Player(ctx, id); err != nil {
		return nil, err
	}
	return s.store.History(ctx, id, limit)
}

// Rate applies one outcome and persists every moved player. On error no
// player is written.
func (s *Service) Rate(ctx context.Context, o Outcome) (*Result, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	players, err := s.load(ctx, append(append([]string{}, o.Winners...), o.Losers...))
	if err != nil {
		return nil, err
	}

	leaves := make(map[string]trueskill.Rating, len(players))
	for id, p := range players {
		r, err := p.rating()
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPlayer, "%s: %v", id, err)
		}
		leaves[id] = r
	}
	winner, err := side("winners", o.Winners, leaves)
	if err != nil {
		return nil, err
	}
	loser, err := side("losers", o.Losers, leaves)
	if err != nil {
		return nil, err
	}

	e, err := trueskill.NewEvent(o.weight(), winner, loser, s.cfg.Parameters, o.Name)
	if err != nil {
		return nil, err
	}
	if err := trueskill.Apply(e); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	res := &Result{
		Name:          o.Name,
		Weight:        e.Weight(),
		Beta:          e.Parameters().Beta(),
		Tau:           e.Parameters().Tau(),
		Delta:         e.Delta(),
		C:             e.C(),
		ZFactor:       e.ZFactor(),
		MeanScale:     e.V(),
		VarianceScale: e.W(),
		CreatedAt:     now,
	}
	updated := make([]Player, 0, len(players))
	collect := func(sideName string, ids []string) {
		for _, id := range ids {
			before, r := players[id], leaves[id]
			res.Changes = append(res.Changes, Change{
				PlayerID:       id,
				Side:           sideName,
				MeanBefore:     before.Mean,
				VarianceBefore: before.Variance,
				MeanAfter:      r.Mean(),
				VarianceAfter:  r.Variance(),
			})
			after := before
			after.Mean, after.Variance = r.Mean(), r.Variance()
			after.Events++
			after.UpdatedAt = now
			updated = append(updated, after)
		}
	}
	collect("winner", o.Winners)
	collect("loser", o.Losers)

	id, err := s.store.RecordResult(ctx, res, updated)
	if err != nil {
		return nil, errors.Wrap(err, "record result")
	}
	res.EventID = id

	if s.cfg.Debug {
		log.Printf("DEBUG: event #%d %q weight=%.2f delta=%.3f c=%.3f z=%.3f v=%.4f w=%.4f",
			id, o.Name, res.Weight, res.Delta, res.C, res.ZFactor, res.MeanScale, res.VarianceScale)
	}
	return res, nil
}

func (s *Service) load(ctx context.Context, ids []string) (map[string]Player, error) {
	players, err := s.store.Players(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "load players")
	}
	for _, id := range ids {
		if _, ok := players[id]; ok {
			continue
		}
		if !s.cfg.AutoRegister {
			return nil, errors.Wrapf(ErrNotFound, "player %s", id)
		}
		players[id] = Player{ID: id, Kind: KindSkill, Mean: s.cfg.DefaultMean, Variance: s.cfg.DefaultVariance}
	}
	return players, nil
}

func side(name string, ids []string, leaves map[string]trueskill.Rating) (trueskill.Rating, error) {
	if len(ids) == 1 {
		return leaves[ids[0]], nil
	}
	members := make([]trueskill.Rating, len(ids))
	for i, id := range ids {
		members[i] = leaves[id]
	}
	return trueskill.NewRateableTotality(name, members...)
}
