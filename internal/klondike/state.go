// internal/klondike/state.go
//
// Board model and state transitions for a single Klondike deal.
// Responsibilities:
//   - Deal the classic triangular tableau (1..7 cards, last card face up).
//   - Draw from stock to waste, and recycle waste back into stock.
//   - Win detection, card lookup (Locate) and deep copies (Clone).
//
// Notes:
//   - Every pile is a slice whose last element is the top card.
//   - Piles are never nil so snapshots compare equal with reflect.DeepEqual.
//   - This package does no I/O and keeps no global state; callers own the
//     *State and apply operations sequentially.
package klondike

import (
	"fmt"
	"math/rand/v2"

	"github.com/robalobadob/solitaire/internal/cards"
)

const (
	NumFoundations = 4
	NumTableau     = 7
	// StockAfterDeal is the number of cards left in the stock after dealing.
	StockAfterDeal = cards.DeckSize - NumTableau*(NumTableau+1)/2
)

// PileKind names one of the four pile families.
type PileKind string

const (
	Stock      PileKind = "stock"
	Waste      PileKind = "waste"
	Foundation PileKind = "foundation"
	Tableau    PileKind = "tableau"
)

// PileRef addresses a single pile. Index is ignored for stock and waste.
type PileRef struct {
	Kind  PileKind `json:"kind"`
	Index int      `json:"index"`
}

func (p PileRef) String() string {
	switch p.Kind {
	case Foundation, Tableau:
		return fmt.Sprintf("%s[%d]", p.Kind, p.Index)
	}
	return string(p.Kind)
}

// Convenience constructors.
func StockPile() PileRef           { return PileRef{Kind: Stock} }
func WastePile() PileRef           { return PileRef{Kind: Waste} }
func FoundationPile(i int) PileRef { return PileRef{Kind: Foundation, Index: i} }
func TableauPile(i int) PileRef    { return PileRef{Kind: Tableau, Index: i} }

// State is the full board plus the rule-level counters.
type State struct {
	Stock       []cards.Card                 `json:"stock"`
	Waste       []cards.Card                 `json:"waste"`
	Foundations [NumFoundations][]cards.Card `json:"foundations"`
	Tableau     [NumTableau][]cards.Card     `json:"tableau"`
	Score       int                          `json:"score"`
	Moves       int                          `json:"moves"`
}

// Empty returns a board with no cards on it.
func Empty() *State {
	s := &State{
		Stock: []cards.Card{},
		Waste: []cards.Card{},
	}
	for i := range s.Foundations {
		s.Foundations[i] = []cards.Card{}
	}
	for i := range s.Tableau {
		s.Tableau[i] = []cards.Card{}
	}
	return s
}

// Deal shuffles a new deck with rng and lays out a fresh game.
func Deal(rng *rand.Rand) *State {
	return DealDeck(cards.CreateDeck(rng))
}

// DealDeck lays out an already ordered deck. Column j receives one card on
// every pass i <= j; the card dealt on pass i == j is the only face-up one.
// The rest of the deck becomes the face-down stock.
func DealDeck(deck []cards.Card) *State {
	s := Empty()
	idx := 0
	for i := 0; i < NumTableau; i++ {
		for j := i; j < NumTableau; j++ {
			c := deck[idx]
			idx++
			c.FaceUp = i == j
			s.Tableau[j] = append(s.Tableau[j], c)
		}
	}
	for _, c := range deck[idx:] {
		c.FaceUp = false
		s.Stock = append(s.Stock, c)
	}
	return s
}

// Draw turns the top stock card onto the waste. With an empty stock it
// recycles the waste: the pile is reversed and turned face down, so the next
// pass draws the cards in the same order as the previous one. It reports
// false, leaving the state untouched, when both piles are empty.
func (s *State) Draw() bool {
	if n := len(s.Stock); n > 0 {
		c := s.Stock[n-1]
		s.Stock = s.Stock[:n-1]
		c.FaceUp = true
		s.Waste = append(s.Waste, c)
		s.Moves++
		return true
	}
	if len(s.Waste) == 0 {
		return false
	}
	stock := make([]cards.Card, 0, len(s.Waste))
	for i := len(s.Waste) - 1; i >= 0; i-- {
		c := s.Waste[i]
		c.FaceUp = false
		stock = append(stock, c)
	}
	s.Stock = stock
	s.Waste = []cards.Card{}
	s.Moves++
	return true
}

// IsWon reports whether every foundation holds a full suit.
func (s *State) IsWon() bool {
	for _, f := range s.Foundations {
		if len(f) != int(cards.King) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy sharing no slices with s.
func (s *State) Clone() *State {
	out := &State{
		Stock: clonePile(s.Stock),
		Waste: clonePile(s.Waste),
		Score: s.Score,
		Moves: s.Moves,
	}
	for i := range s.Foundations {
		out.Foundations[i] = clonePile(s.Foundations[i])
	}
	for i := range s.Tableau {
		out.Tableau[i] = clonePile(s.Tableau[i])
	}
	return out
}

func clonePile(p []cards.Card) []cards.Card {
	return append(make([]cards.Card, 0, len(p)), p...)
}

// Location is where a card currently sits.
type Location struct {
	Pile     PileRef `json:"pile"`
	Position int     `json:"position"` // 0 = bottom of the pile
}

// Locate finds the pile holding cardID.
func (s *State) Locate(cardID string) (Location, bool) {
	var (
		loc   Location
		found bool
	)
	s.eachPile(func(ref PileRef, pile []cards.Card) bool {
		for i, c := range pile {
			if c.ID == cardID {
				loc, found = Location{Pile: ref, Position: i}, true
				return false
			}
		}
		return true
	})
	return loc, found
}

// Pile returns a copy of the referenced pile.
func (s *State) Pile(ref PileRef) ([]cards.Card, error) {
	p, err := s.pile(ref)
	if err != nil {
		return nil, err
	}
	return clonePile(*p), nil
}

// Top returns the top card of pile, or nil when it is empty.
func Top(pile []cards.Card) *cards.Card {
	if len(pile) == 0 {
		return nil
	}
	c := pile[len(pile)-1]
	return &c
}

// pile resolves ref to the live slice so callers can mutate it.
func (s *State) pile(ref PileRef) (*[]cards.Card, error) {
	switch ref.Kind {
	case Stock:
		return &s.Stock, nil
	case Waste:
		return &s.Waste, nil
	case Foundation:
		if ref.Index >= 0 && ref.Index < NumFoundations {
			return &s.Foundations[ref.Index], nil
		}
	case Tableau:
		if ref.Index >= 0 && ref.Index < NumTableau {
			return &s.Tableau[ref.Index], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrBadPile, ref)
}

// eachPile visits piles in a fixed order until fn returns false.
func (s *State) eachPile(fn func(ref PileRef, pile []cards.Card) bool) {
	if !fn(StockPile(), s.Stock) || !fn(WastePile(), s.Waste) {
		return
	}
	for i, f := range s.Foundations {
		if !fn(FoundationPile(i), f) {
			return
		}
	}
	for i, t := range s.Tableau {
		if !fn(TableauPile(i), t) {
			return
		}
	}
}
