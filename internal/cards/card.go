// internal/cards/card.go
//
// Playing card model for the Klondike engine.
// Defines:
//   - Suit / Rank / Color enums with their fixed ordering (A < 2 < ... < K).
//   - Card: a value record whose only mutable field is FaceUp.
//   - The two pairwise legality predicates used by every pile rule:
//     CanStack (tableau) and CanMoveToFoundation (foundation).
//
// Notes:
//   - Card.ID is derived from rank+suit ("A-spades", "10-hearts") and is
//     unique within a single 52-card deck.
package cards

import (
	"errors"
	"fmt"
	"strings"
)

// Suit is one of the four French suits.
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in deck order.
var Suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

var suitNames = [4]string{"hearts", "diamonds", "clubs", "spades"}

// String returns the lowercase suit name used in card IDs and JSON.
func (s Suit) String() string {
	if int(s) < len(suitNames) {
		return suitNames[s]
	}
	return fmt.Sprintf("suit(%d)", uint8(s))
}

// Symbol returns the unicode pip for terminal rendering.
func (s Suit) Symbol() string {
	return [4]string{"♥", "♦", "♣", "♠"}[s&3]
}

// Color is the card color used by the alternating-color rule.
type Color uint8

const (
	Red Color = iota
	Black
)

// Color reports red for hearts/diamonds and black for clubs/spades.
func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

// Rank is the card rank, Ace = 1 through King = 13.
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var rankNames = [...]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// String returns "A", "2".."10", "J", "Q" or "K".
func (r Rank) String() string {
	if r >= Ace && r <= King {
		return rankNames[r]
	}
	return fmt.Sprintf("rank(%d)", uint8(r))
}

// MarshalText encodes the suit by name.
func (s Suit) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a suit name.
func (s *Suit) UnmarshalText(b []byte) error {
	for _, v := range Suits {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("%w: suit %q", ErrBadCardID, b)
}

// MarshalText encodes the rank as "A".."K".
func (r Rank) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText decodes "A".."K".
func (r *Rank) UnmarshalText(b []byte) error {
	for v := Ace; v <= King; v++ {
		if rankNames[v] == string(b) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("%w: rank %q", ErrBadCardID, b)
}

// Card is a single playing card.
type Card struct {
	Suit   Suit   `json:"suit"`
	Rank   Rank   `json:"rank"`
	FaceUp bool   `json:"faceUp"`
	ID     string `json:"id"`
}

// New builds a face-down card with its derived ID.
func New(r Rank, s Suit) Card {
	return Card{Suit: s, Rank: r, ID: MakeID(r, s)}
}

// MakeID returns the deterministic identifier for a rank/suit pair.
func MakeID(r Rank, s Suit) string {
	return r.String() + "-" + s.String()
}

// Color is shorthand for c.Suit.Color().
func (c Card) Color() Color { return c.Suit.Color() }

// String renders the card compactly, e.g. "10♥" or "[##]" when face down.
func (c Card) String() string {
	if !c.FaceUp {
		return "[##]"
	}
	return c.Rank.String() + c.Suit.Symbol()
}

// ErrBadCardID is returned by Parse for malformed identifiers.
var ErrBadCardID = errors.New("cards: malformed card id")

// Parse is the inverse of MakeID. The returned card is face down.
func Parse(id string) (Card, error) {
	rs, ss, ok := strings.Cut(id, "-")
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrBadCardID, id)
	}
	var rank Rank
	for r := Ace; r <= King; r++ {
		if rankNames[r] == strings.ToUpper(rs) {
			rank = r
			break
		}
	}
	if rank == 0 {
		return Card{}, fmt.Errorf("%w: rank %q", ErrBadCardID, rs)
	}
	for _, s := range Suits {
		if s.String() == strings.ToLower(ss) {
			return New(rank, s), nil
		}
	}
	return Card{}, fmt.Errorf("%w: suit %q", ErrBadCardID, ss)
}

// CanStack reports whether moving may be placed on target in a tableau
// column: one rank lower and the opposite color.
func CanStack(moving, target Card) bool {
	return moving.Rank+1 == target.Rank && moving.Color() != target.Color()
}

// CanMoveToFoundation reports whether card may go onto a foundation whose
// top card is top (nil for an empty foundation).
func CanMoveToFoundation(card Card, top *Card) bool {
	if top == nil {
		return card.Rank == Ace
	}
	return card.Suit == top.Suit && card.Rank == top.Rank+1
}
