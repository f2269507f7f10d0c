// internal/game/types.go
//
// Core type definitions for a Klondike session.
// Defines:
//   - Options: how a session is created (seed, daily date, undo depth, callbacks).
//   - Result:  what is reported once a deal is won.
//   - Info:    a read-only view of a session for rendering.
//   - Game:    the single owner of the live board, its undo history and the
//              saved initial deal.

package game

import (
	"sync"
	"time"

	"github.com/robalobadob/solitaire/internal/history"
	"github.com/robalobadob/solitaire/internal/klondike"
)

// Options configure New.
type Options struct {
	Seed         uint64           // 0 picks a random deal
	Daily        string           // date key when this is the daily deal
	OwnerID      string           // user or anonymous id, for stats
	HistoryLimit int              // max undo depth, 0 = unlimited
	OnWin        func(r Result)   // called once per won deal, outside the lock
	Clock        func() time.Time // defaults to time.Now
}

// Result summarizes a won deal.
type Result struct {
	GameID  string        `json:"gameId"`
	OwnerID string        `json:"ownerId,omitempty"`
	Seed    uint64        `json:"seed"`
	Daily   string        `json:"daily,omitempty"`
	Score   int           `json:"score"`
	Moves   int           `json:"moves"`
	Elapsed time.Duration `json:"elapsed"`
}

// Info is a snapshot of a session. State is a private copy.
type Info struct {
	ID        string          `json:"id"`
	Seed      uint64          `json:"seed"`
	Daily     string          `json:"daily,omitempty"`
	Won       bool            `json:"won"`
	Wins      int             `json:"wins"`
	UndoDepth int             `json:"undoDepth"`
	StartedAt time.Time       `json:"startedAt"`
	Elapsed   time.Duration   `json:"elapsed"`
	State     *klondike.State `json:"state"`
}

// Game holds one player's session.
type Game struct {
	ID      string
	OwnerID string

	mu         sync.Mutex
	seed       uint64
	daily      string
	state      *klondike.State
	initial    *klondike.State // deep copy of the deal, for Restart
	history    *history.Stack
	wins       int
	wonDeal    bool // current deal already counted as a win
	startedAt  time.Time
	finishedAt time.Time
	lastActive time.Time

	onWin func(Result)
	now   func() time.Time
}
