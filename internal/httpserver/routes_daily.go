// internal/httpserver/routes_daily.go
//
// HTTP routes for the "deal of the day".
//   - POST /daily/new         → start today's deal (creates or reuses the session)
//   - GET  /daily/leaderboard → top results for today (or ?date=YYYY-MM-DD)
//
// Every player gets the same shuffle for a date (seed = HMAC(salt, date)).
// A player with a recorded result for today is told so instead of dealt
// again. The deal itself is played through the regular /game/{id} routes;
// the win hook writes the daily result.

package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solitaire/internal/daily"
	"github.com/robalobadob/solitaire/internal/game"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// dailyRes is returned by /daily/new. Game is nil when already played.
type dailyRes struct {
	Date   string    `json:"date"`
	Played bool      `json:"played"`
	Game   *gameView `json:"game,omitempty"`
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	uid := s.ownerID(w, r)
	now := s.now()
	date := daily.DateKey(now)

	played, err := s.daily.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyRes{Date: date, Played: true})
		return
	}

	// Reuse today's live session if it is still around.
	key := uid + "|" + date
	s.dailyMu.Lock()
	defer s.dailyMu.Unlock()
	var g *game.Game
	if id, ok := s.dailyGames[key]; ok {
		if existing, err := s.store.Get(r.Context(), id); err == nil && existing.Info().Daily == date {
			g = existing
		}
	}
	if g == nil {
		g, err = s.newGame(r.Context(), uid, daily.Seed(now, s.cfg.DailySalt), date)
		if err != nil {
			log.Error().Err(err).Msg("save daily game")
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		for k := range s.dailyGames {
			if !strings.HasSuffix(k, "|"+date) {
				delete(s.dailyGames, k)
			}
		}
		s.dailyGames[key] = g.ID
		if me := currentUser(r); me != nil {
			s.countNewDeal(r.Context(), me.ID)
		}
	}
	v := viewGame(g.Info())
	writeJSON(w, http.StatusOK, dailyRes{Date: date, Game: &v})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	}
	limit := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
