package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"partial-trueskill/server/ladder"
	"partial-trueskill/server/trueskill"
)

func Router(svc *ladder.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		p := svc.Parameters()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "beta": p.Beta(), "tau": p.Tau()})
	})

	r.Route("/api/players", func(r chi.Router) {
		// Leaderboard, highest mean first
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			players, err := svc.Leaderboard(r.Context(), atoiDef(r.URL.Query().Get("limit"), 100))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, players)
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			p, err := svc.Player(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
		})

		r.Get("/{id}/history", func(w http.ResponseWriter, r *http.Request) {
			h, err := svc.History(r.Context(), chi.URLParam(r, "id"), atoiDef(r.URL.Query().Get("limit"), 50))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, h)
		})

		// Register or replace; omitted mean/variance take the defaults
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Kind     ladder.Kind `json:"kind"`
				Mean     *float64    `json:"mean"`
				Variance *float64    `json:"variance"`
				Locked   bool        `json:"locked"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
				return
			}
			mean, variance := svc.Defaults()
			p := ladder.Player{
				ID:       chi.URLParam(r, "id"),
				Kind:     body.Kind,
				Mean:     mean,
				Variance: variance,
				Locked:   body.Locked,
			}
			if body.Mean != nil {
				p.Mean = *body.Mean
			}
			if body.Variance != nil {
				p.Variance = *body.Variance
			}
			saved, err := svc.Register(r.Context(), p)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, saved)
		})
	})

	r.Post("/api/events", func(w http.ResponseWriter, r *http.Request) {
		var o ladder.Outcome
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		res, err := svc.Rate(r.Context(), o)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	})

	return r
}

// writeError maps domain errors to status codes; anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ladder.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ladder.ErrInvalidOutcome),
		errors.Is(err, ladder.ErrInvalidPlayer),
		errors.Is(err, trueskill.ErrInvalidWeight):
		status = http.StatusBadRequest
	case errors.Is(err, trueskill.ErrZeroSpread),
		errors.Is(err, trueskill.ErrDegenerate),
		errors.Is(err, trueskill.ErrNegativeVariance),
		errors.Is(err, trueskill.ErrInvalidRating),
		errors.Is(err, trueskill.ErrSharedRating):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
