// internal/game/engine.go
//
// Session controller for a single Klondike game.
// Responsibilities:
//   - Create a deal (random or seeded) and keep a copy for Restart.
//   - Apply Draw / Move / AutoMove, recording a history snapshot before each
//     change; rejected moves record nothing.
//   - Undo, Restart and NewDeal.
//   - Count wins once per deal and report them through Options.OnWin.
//
// Notes:
//   - All methods are safe for concurrent use; operations on one Game are
//     serialized by its mutex and each runs to completion.
//   - The engine itself (klondike, history, hint) is never shared between
//     sessions.
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/solitaire/internal/cards"
	"github.com/robalobadob/solitaire/internal/hint"
	"github.com/robalobadob/solitaire/internal/history"
	"github.com/robalobadob/solitaire/internal/klondike"
)

// New deals a fresh game.
func New(opts Options) *Game {
	g := &Game{
		ID:      uuid.NewString(),
		OwnerID: opts.OwnerID,
		daily:   opts.Daily,
		history: history.New(opts.HistoryLimit),
		onWin:   opts.OnWin,
		now:     opts.Clock,
	}
	if g.now == nil {
		g.now = time.Now
	}
	g.deal(opts.Seed)
	return g
}

// NewDeal replaces the board with a fresh deal and forgets all history.
func (g *Game) NewDeal(seed uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.daily = ""
	g.deal(seed)
}

func (g *Game) deal(seed uint64) {
	rng, used := cards.NewRand(seed)
	g.seed = used
	g.state = klondike.Deal(rng)
	g.initial = g.state.Clone()
	g.history.Clear()
	g.wonDeal = false
	g.startedAt = g.now()
	g.finishedAt = time.Time{}
	g.lastActive = g.startedAt
}

// Restart puts the original deal back, clears history and restarts the
// clock. The win counter is not reset, so replaying a won deal does not
// count twice.
func (g *Game) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = g.initial.Clone()
	g.history.Clear()
	g.startedAt = g.now()
	g.finishedAt = time.Time{}
	g.lastActive = g.startedAt
}

// Draw turns a stock card (or recycles the waste). It reports false when
// there was nothing to draw.
func (g *Game) Draw() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastActive = g.now()
	if len(g.state.Stock) == 0 && len(g.state.Waste) == 0 {
		return false
	}
	g.history.Push(g.state)
	return g.state.Draw()
}

// Move applies a move. An illegal move returns (false, nil) and changes
// nothing; klondike.ErrCardNotInPile means the caller's view is stale.
func (g *Game) Move(from, to klondike.PileRef, cardID string) (bool, error) {
	g.mu.Lock()
	ok, err := g.moveLocked(from, to, cardID)
	res := g.checkWinLocked()
	g.mu.Unlock()

	g.notify(res)
	return ok, err
}

// AutoMove sends a card to the first pile that takes it, foundations first.
// It returns the chosen target. An unknown source pile is reported as
// klondike.ErrBadPile, as Move does.
func (g *Game) AutoMove(from klondike.PileRef, cardID string) (klondike.PileRef, bool, error) {
	g.mu.Lock()
	var (
		to  klondike.PileRef
		ok  bool
		err error
	)
	_, err = g.state.Pile(from)
	if err == nil {
		if loc, found := g.state.Locate(cardID); !found || loc.Pile != from {
			err = fmt.Errorf("%w: %s in %s", klondike.ErrCardNotInPile, cardID, from)
		} else if to, ok = g.state.AutoMoveTarget(from, cardID); ok {
			ok, err = g.moveLocked(from, to, cardID)
		}
	}
	res := g.checkWinLocked()
	g.mu.Unlock()

	g.notify(res)
	return to, ok, err
}

func (g *Game) moveLocked(from, to klondike.PileRef, cardID string) (bool, error) {
	g.lastActive = g.now()
	if !g.state.CanMove(from, to, cardID) {
		// Reports either a plain rejection or the lookup error.
		return g.state.MoveCard(from, to, cardID)
	}
	g.history.Push(g.state)
	return g.state.MoveCard(from, to, cardID)
}

// checkWinLocked returns a Result the first time the current deal is won.
func (g *Game) checkWinLocked() *Result {
	if !g.state.IsWon() || !g.finishedAt.IsZero() {
		return nil
	}
	g.finishedAt = g.now()
	if g.wonDeal {
		return nil
	}
	g.wonDeal = true
	g.wins++
	return &Result{
		GameID:  g.ID,
		OwnerID: g.OwnerID,
		Seed:    g.seed,
		Daily:   g.daily,
		Score:   g.state.Score,
		Moves:   g.state.Moves,
		Elapsed: g.finishedAt.Sub(g.startedAt),
	}
}

func (g *Game) notify(r *Result) {
	if r != nil && g.onWin != nil {
		g.onWin(*r)
	}
}

// Undo restores the board as it was before the last draw or move. It
// reports false when there is nothing to undo.
func (g *Game) Undo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastActive = g.now()
	prev, ok := g.history.Pop()
	if !ok {
		return false
	}
	g.state = prev
	if !g.state.IsWon() {
		g.finishedAt = time.Time{}
	}
	return true
}

// Hint scans the current board for a single legal move.
func (g *Game) Hint() (hint.Hint, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return hint.Find(g.state)
}

// Won reports whether the current board is complete.
func (g *Game) Won() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.IsWon()
}

// Snapshot returns a private copy of the board.
func (g *Game) Snapshot() *klondike.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone()
}

// Locate reports where a card currently sits.
func (g *Game) Locate(cardID string) (klondike.Location, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Locate(cardID)
}

// FaceUp reports whether the card is on the board and showing its face.
func (g *Game) FaceUp(cardID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	loc, ok := g.state.Locate(cardID)
	if !ok {
		return false
	}
	p, err := g.state.Pile(loc.Pile)
	return err == nil && p[loc.Position].FaceUp
}

// Info returns a rendering view of the session.
func (g *Game) Info() Info {
	g.mu.Lock()
	defer g.mu.Unlock()
	end := g.finishedAt
	if end.IsZero() {
		end = g.now()
	}
	return Info{
		ID:        g.ID,
		Seed:      g.seed,
		Daily:     g.daily,
		Won:       g.state.IsWon(),
		Wins:      g.wins,
		UndoDepth: g.history.Len(),
		StartedAt: g.startedAt,
		Elapsed:   end.Sub(g.startedAt),
		State:     g.state.Clone(),
	}
}

// LastActive is the time of the most recent operation.
func (g *Game) LastActive() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}
