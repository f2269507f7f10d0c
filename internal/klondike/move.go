// internal/klondike/move.go
//
// Card moves between piles.
// Responsibilities:
//   - Check legality (tableau runs, foundation order, top-card-only sources).
//   - Apply a move, flip the newly exposed tableau card and update the score.
//   - Pick the auto-move target for a card, foundations first.
//
// Notes:
//   - An illegal move is (false, nil); errors are reserved for bad pile
//     references and cards that are not in the named pile.
package klondike

import (
	"errors"
	"fmt"

	"github.com/robalobadob/solitaire/internal/cards"
)

// Score awarded per successful move.
const (
	ScoreToFoundation        = 15
	ScoreToTableau           = 5
	ScoreFoundationToTableau = -15
)

var (
	// ErrCardNotInPile means the caller's idea of where a card lives disagrees
	// with the board. It is a caller bug, not a rejected move.
	ErrCardNotInPile = errors.New("klondike: card not in source pile")
	// ErrBadPile is returned for an unknown kind or out-of-range index.
	ErrBadPile = errors.New("klondike: no such pile")
)

// MoveCard moves cardID and every card above it from one pile to another.
//
// It returns (false, nil) when the move is illegal and leaves s untouched.
// On success the run is appended to the target in order, the newly exposed
// tableau card (if face down) is turned up, and Moves and Score advance.
func (s *State) MoveCard(from, to PileRef, cardID string) (bool, error) {
	src, err := s.pile(from)
	if err != nil {
		return false, err
	}
	dst, err := s.pile(to)
	if err != nil {
		return false, err
	}
	pos := indexOf(*src, cardID)
	if pos < 0 {
		return false, fmt.Errorf("%w: %s in %s", ErrCardNotInPile, cardID, from)
	}
	if !legal(from, to, *src, pos, *dst) {
		return false, nil
	}

	run := clonePile((*src)[pos:])
	*src = (*src)[:pos]
	if from.Kind == Tableau && pos > 0 && !(*src)[pos-1].FaceUp {
		(*src)[pos-1].FaceUp = true
	}
	*dst = append(*dst, run...)

	s.Moves++
	s.Score += moveScore(from.Kind, to.Kind)
	if s.Score < 0 {
		s.Score = 0
	}
	return true, nil
}

// CanMove reports whether MoveCard(from, to, cardID) would succeed, without
// changing anything.
func (s *State) CanMove(from, to PileRef, cardID string) bool {
	src, err := s.pile(from)
	if err != nil {
		return false
	}
	dst, err := s.pile(to)
	if err != nil {
		return false
	}
	pos := indexOf(*src, cardID)
	return pos >= 0 && legal(from, to, *src, pos, *dst)
}

// AutoMoveTarget picks where a double-clicked card should go: the first
// foundation that takes it, otherwise the first other tableau column that
// takes its run.
func (s *State) AutoMoveTarget(from PileRef, cardID string) (PileRef, bool) {
	for i := 0; i < NumFoundations; i++ {
		if to := FoundationPile(i); s.CanMove(from, to, cardID) {
			return to, true
		}
	}
	for i := 0; i < NumTableau; i++ {
		to := TableauPile(i)
		if to == from {
			continue
		}
		if s.CanMove(from, to, cardID) {
			return to, true
		}
	}
	return PileRef{}, false
}

// Accepts reports whether a run may be placed on target of the given kind.
// An empty tableau column only takes a King-led run.
func Accepts(kind PileKind, target, run []cards.Card) bool {
	if len(run) == 0 {
		return false
	}
	top := Top(target)
	switch kind {
	case Foundation:
		return len(run) == 1 && cards.CanMoveToFoundation(run[0], top)
	case Tableau:
		if top == nil {
			return run[0].Rank == cards.King
		}
		return top.FaceUp && cards.CanStack(run[0], *top)
	}
	return false
}

func legal(from, to PileRef, src []cards.Card, pos int, dst []cards.Card) bool {
	if from == to || from.Kind == Stock {
		return false
	}
	if from.Kind == Foundation && to.Kind == Foundation {
		return false
	}
	// Waste and foundation only ever expose their top card.
	if (from.Kind == Waste || from.Kind == Foundation) && pos != len(src)-1 {
		return false
	}
	run := src[pos:]
	if !isRun(run) {
		return false
	}
	return Accepts(to.Kind, dst, run)
}

// isRun reports whether cards is a face-up, descending, alternating sequence.
func isRun(run []cards.Card) bool {
	for i, c := range run {
		if !c.FaceUp {
			return false
		}
		if i > 0 && !cards.CanStack(c, run[i-1]) {
			return false
		}
	}
	return true
}

func moveScore(from, to PileKind) int {
	switch {
	case to == Foundation:
		return ScoreToFoundation
	case from == Foundation:
		return ScoreFoundationToTableau
	default:
		return ScoreToTableau
	}
}

func indexOf(pile []cards.Card, id string) int {
	for i, c := range pile {
		if c.ID == id {
			return i
		}
	}
	return -1
}
