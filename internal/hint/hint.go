// internal/hint/hint.go
//
// Single-move hint scan. The search order is fixed so the same board always
// yields the same hint:
//   1. for each foundation in index order: the waste top, then the top card
//      of each tableau column in order;
//   2. for each tableau column in order: its whole face-up run onto the top
//      card of another column, or onto an empty column when the run is
//      King-led and the King is not already at the bottom of its column.
//
// Legality is delegated to klondike.State.CanMove, so every hint is a move
// the engine will accept. There is no look-ahead.
package hint

import (
	"fmt"

	"github.com/robalobadob/solitaire/internal/cards"
	"github.com/robalobadob/solitaire/internal/klondike"
)

// Hint describes one suggested move.
type Hint struct {
	CardIDs      []string         `json:"cardIds"` // cards to highlight
	CardID       string           `json:"cardId"`
	TargetCardID string           `json:"targetCardId,omitempty"`
	From         klondike.PileRef `json:"from"`
	To           klondike.PileRef `json:"to"`
	Message      string           `json:"message"`
}

// NoHintMessage is shown when the scan finds nothing.
const NoHintMessage = "No moves available"

// Find returns the first legal move in search order, or false when there is
// none. s is not modified.
func Find(s *klondike.State) (Hint, bool) {
	for f := 0; f < klondike.NumFoundations; f++ {
		to := klondike.FoundationPile(f)
		if top := klondike.Top(s.Waste); top != nil && s.CanMove(klondike.WastePile(), to, top.ID) {
			return build(*top, klondike.WastePile(), to, s.Foundations[f]), true
		}
		for t := 0; t < klondike.NumTableau; t++ {
			from := klondike.TableauPile(t)
			top := klondike.Top(s.Tableau[t])
			if top != nil && top.FaceUp && s.CanMove(from, to, top.ID) {
				return build(*top, from, to, s.Foundations[f]), true
			}
		}
	}

	for t := 0; t < klondike.NumTableau; t++ {
		col := s.Tableau[t]
		base := firstFaceUp(col)
		if base < 0 {
			continue
		}
		from := klondike.TableauPile(t)
		c := col[base]
		for u := 0; u < klondike.NumTableau; u++ {
			if u == t {
				continue
			}
			if len(s.Tableau[u]) == 0 && base == 0 {
				continue // a King already heads its own column
			}
			to := klondike.TableauPile(u)
			if s.CanMove(from, to, c.ID) {
				return build(c, from, to, s.Tableau[u]), true
			}
		}
	}
	return Hint{}, false
}

func build(c cards.Card, from, to klondike.PileRef, target []cards.Card) Hint {
	h := Hint{
		CardIDs: []string{c.ID},
		CardID:  c.ID,
		From:    from,
		To:      to,
	}
	top := klondike.Top(target)
	if top != nil {
		h.TargetCardID = top.ID
		h.CardIDs = append(h.CardIDs, top.ID)
	}
	switch {
	case to.Kind == klondike.Foundation:
		h.Message = fmt.Sprintf("Move %s to the foundation", c)
	case top == nil:
		h.Message = fmt.Sprintf("Move %s to the empty column", c)
	default:
		h.Message = fmt.Sprintf("Move %s onto %s", c, *top)
	}
	return h
}

func firstFaceUp(col []cards.Card) int {
	for i, c := range col {
		if c.FaceUp {
			return i
		}
	}
	return -1
}
