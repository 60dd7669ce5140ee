package store

import (
	"context"
	"embed"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"partial-trueskill/server/ladder"
)

//go:embed schema.sql
var schema embed.FS

// DB is the Postgres implementation of ladder.Store.
type DB struct{ *pgxpool.Pool }

var _ ladder.Store = (*DB)(nil)

func Open(ctx context.Context, dsn string) (*DB, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open pool")
	}
	return &DB{p}, nil
}

func (db *DB) Close()                         { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return errors.Wrap(err, "apply schema")
}

const playerColumns = `id, kind, mean, variance, locked, events, updated_at`

func scanPlayer(row pgx.Row) (ladder.Player, error) {
	var p ladder.Player
	var kind string
	err := row.Scan(&p.ID, &kind, &p.Mean, &p.Variance, &p.Locked, &p.Events, &p.UpdatedAt)
	p.Kind = ladder.Kind(kind)
	return p, err
}

func (db *DB) Player(ctx context.Context, id string) (ladder.Player, error) {
	p, err := scanPlayer(db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ladder.Player{}, errors.Wrapf(ladder.ErrNotFound, "player %s", id)
	}
	return p, errors.Wrapf(err, "select player %s", id)
}

func (db *DB) Players(ctx context.Context, ids []string) (map[string]ladder.Player, error) {
	rows, err := db.Query(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "select players")
	}
	defer rows.Close()
	out := make(map[string]ladder.Player, len(ids))
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// execer is satisfied by the pool and by transactions.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertPlayer(ctx context.Context, q execer, p ladder.Player) error {
	_, err := q.Exec(ctx, `
		INSERT INTO players(id, kind, mean, variance, locked, events, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE
		   SET kind = EXCLUDED.kind,
		       mean = EXCLUDED.mean,
		       variance = EXCLUDED.variance,
		       locked = EXCLUDED.locked,
		       events = EXCLUDED.events,
		       updated_at = EXCLUDED.updated_at
	`, p.ID, string(p.Kind), p.Mean, p.Variance, p.Locked, p.Events, p.UpdatedAt)
	return errors.Wrapf(err, "upsert player %s", p.ID)
}

func (db *DB) SavePlayer(ctx context.Context, p ladder.Player) error {
	return upsertPlayer(ctx, db.Pool, p)
}

func (db *DB) Leaderboard(ctx context.Context, limit int) ([]ladder.Player, error) {
	var lim any // NULL means no limit
	if limit > 0 {
		lim = limit
	}
	rows, err := db.Query(ctx, `
		SELECT `+playerColumns+`
		  FROM players
		 ORDER BY mean DESC, id
		 LIMIT $1
	`, lim)
	if err != nil {
		return nil, errors.Wrap(err, "select leaderboard")
	}
	defer rows.Close()
	out := []ladder.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordResult writes the event, its history rows and the updated players
// in one transaction.
func (db *DB) RecordResult(ctx context.Context, res *ladder.Result, players []ladder.Player) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		createdAt := res.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO rating_events(name, weight, beta, tau, delta, c, z_factor, mean_scale, variance_scale, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id
		`, res.Name, res.Weight, res.Beta, res.Tau, res.Delta, res.C, res.ZFactor, res.MeanScale, res.VarianceScale, createdAt).Scan(&id); err != nil {
			return errors.Wrap(err, "insert event")
		}
		for _, p := range players {
			if err := upsertPlayer(ctx, tx, p); err != nil {
				return err
			}
		}
		batch := &pgx.Batch{}
		for _, c := range res.Changes {
			batch.Queue(`
				INSERT INTO rating_history(event_id, player_id, side, mean_before, variance_before, mean_after, variance_after)
				VALUES ($1,$2,$3,$4,$5,$6,$7)
			`, id, c.PlayerID, c.Side, c.MeanBefore, c.VarianceBefore, c.MeanAfter, c.VarianceAfter)
		}
		return errors.Wrap(tx.SendBatch(ctx, batch).Close(), "insert history")
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (db *DB) History(ctx context.Context, playerID string, limit int) ([]ladder.HistoryEntry, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := db.Query(ctx, `
		SELECT e.id, e.name, e.weight, e.created_at,
		       h.side, h.mean_before, h.variance_before, h.mean_after, h.variance_after
		  FROM rating_history h
		  JOIN rating_events e ON e.id = h.event_id
		 WHERE h.player_id = $1
		 ORDER BY e.id DESC
		 LIMIT $2
	`, playerID, lim)
	if err != nil {
		return nil, errors.Wrap(err, "select history")
	}
	defer rows.Close()
	out := []ladder.HistoryEntry{}
	for rows.Next() {
		h := ladder.HistoryEntry{Change: ladder.Change{PlayerID: playerID}}
		if err := rows.Scan(&h.EventID, &h.EventName, &h.Weight, &h.CreatedAt,
			&h.Change.Side, &h.Change.MeanBefore, &h.Change.VarianceBefore,
			&h.Change.MeanAfter, &h.Change.VarianceAfter); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
