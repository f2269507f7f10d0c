// internal/httpserver/stats.go
//
// Lifetime stats and finished-game history.
//   - recordWin is the game.Options.OnWin hook: it stores the won game, bumps
//     the owner's stats and records the daily result. The "won" event is
//     queued and goes out after the final board (see publish).
//   - countNewDeal bumps games_played; starting a deal while the previous
//     one is unfinished breaks the win streak.

package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solitaire/internal/daily"
	"github.com/robalobadob/solitaire/internal/game"
)

// recordWin persists a won deal. Failures are logged; the win itself already
// happened and is never rolled back.
func (s *Server) recordWin(res game.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l := log.With().Str("gameId", res.GameID).Str("owner", res.OwnerID).Logger()
	l.Info().Int("score", res.Score).Int("moves", res.Moves).Dur("elapsed", res.Elapsed).Msg("game won")

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO games (id, owner_id, seed, daily, score, moves, elapsed_ms, finished_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		res.GameID, res.OwnerID, strconv.FormatUint(res.Seed, 10), nullable(res.Daily),
		res.Score, res.Moves, res.Elapsed.Milliseconds(), s.now().UTC().Format(time.RFC3339),
	); err != nil {
		l.Warn().Err(err).Msg("insert won game")
	}

	// Guests have no users row; the update then matches nothing.
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET wins = wins + 1, streak = streak + 1,
		        best_score = MAX(best_score, ?), unfinished = 0
		 WHERE id=?`, res.Score, res.OwnerID,
	); err != nil {
		l.Warn().Err(err).Msg("bump stats")
	}

	if res.Daily != "" {
		if err := s.daily.InsertResult(ctx, daily.Result{
			UserID:    res.OwnerID,
			Date:      res.Daily,
			Seed:      res.Seed,
			Moves:     res.Moves,
			Score:     res.Score,
			ElapsedMs: res.Elapsed.Milliseconds(),
		}); err != nil {
			l.Warn().Err(err).Msg("insert daily result")
		}
	}

	// Pushed by publish, after the board that shows the win.
	s.winsMu.Lock()
	s.wins[res.GameID] = res
	s.winsMu.Unlock()
}

// takeWin returns and forgets the unpushed result for gameID.
func (s *Server) takeWin(gameID string) (game.Result, bool) {
	s.winsMu.Lock()
	defer s.winsMu.Unlock()
	res, ok := s.wins[gameID]
	delete(s.wins, gameID)
	return res, ok
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// countNewDeal records that userID started a deal.
func (s *Server) countNewDeal(ctx context.Context, userID string) {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET games_played = games_played + 1,
		        streak = CASE WHEN unfinished = 1 THEN 0 ELSE streak END,
		        unfinished = 1
		 WHERE id=?`, userID,
	); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("count new deal")
	}
}

func (s *Server) handleStatsMe(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	u, err := s.findUserByID(r.Context(), me.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          u.ID,
		"gamesPlayed": u.GamesPlayed,
		"wins":        u.Wins,
		"streak":      u.Streak,
		"bestScore":   u.BestScore,
	})
}

type gameRow struct {
	ID         string `json:"id"`
	Daily      string `json:"daily,omitempty"`
	Score      int    `json:"score"`
	Moves      int    `json:"moves"`
	ElapsedMs  int64  `json:"elapsedMs"`
	FinishedAt string `json:"finishedAt"`
}

// handleMyGames lists the caller's 50 most recent won games.
func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	me := currentUser(r)
	rows, err := s.db.QueryContext(r.Context(),
		`SELECT id, COALESCE(daily,''), score, moves, elapsed_ms, finished_at
		 FROM games WHERE owner_id=? ORDER BY finished_at DESC LIMIT 50`, me.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	defer rows.Close()

	out := []gameRow{}
	for rows.Next() {
		var gr gameRow
		if err := rows.Scan(&gr.ID, &gr.Daily, &gr.Score, &gr.Moves, &gr.ElapsedMs, &gr.FinishedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		out = append(out, gr)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
