// internal/daily/store.go
//
// Daily deal results in SQLite (table daily_results, UNIQUE(user_id, date)).
// Ranking: fewest moves first, then fastest, then earliest finisher.

package daily

import (
	"context"
	"database/sql"
	"strconv"
)

// Result is one player's won daily deal.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Seed      uint64 `json:"-"`
	Moves     int    `json:"moves"`
	Score     int    `json:"score"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a result. A second result for the same user and date
// is ignored; the first win stands.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, seed, moves, score, elapsed_ms)
		 VALUES(?,?,?,?,?,?)`,
		r.UserID, r.Date, strconv.FormatUint(r.Seed, 10), r.Moves, r.Score, r.ElapsedMs,
	)
	return err
}

// LBRow is one leaderboard line.
type LBRow struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"userId"`
	Username  string `json:"username,omitempty"`
	Moves     int    `json:"moves"`
	Score     int    `json:"score"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Leaderboard returns the top results for date. Usernames are filled in for
// registered players; guests show up with their anonymous id only.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.user_id, COALESCE(u.username, ''), d.moves, d.score, d.elapsed_ms
		 FROM daily_results d
		 LEFT JOIN users u ON u.id = d.user_id
		 WHERE d.date=?
		 ORDER BY d.moves ASC, d.elapsed_ms ASC, d.created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		r := LBRow{Rank: len(out) + 1}
		if err := rows.Scan(&r.UserID, &r.Username, &r.Moves, &r.Score, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
