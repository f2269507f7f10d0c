// internal/klondike/validate.go
//
// Structural checks on a board.
// Responsibilities:
//   - Report every broken invariant at once, each wrapping ErrInvariant.
package klondike

import (
	"errors"
	"fmt"

	"github.com/robalobadob/solitaire/internal/cards"
)

// ErrInvariant wraps every violation reported by Validate.
var ErrInvariant = errors.New("klondike: invariant violated")

// Validate checks the structural invariants of the board:
//   - the piles together hold exactly one standard deck;
//   - stock cards are face down and waste cards face up;
//   - in every tableau column face-down cards sit below face-up ones;
//   - every foundation is Ace, 2, 3... of a single suit.
func (s *State) Validate() error {
	seen := make(map[string]PileRef, cards.DeckSize)
	var errs []error
	s.eachPile(func(ref PileRef, pile []cards.Card) bool {
		for _, c := range pile {
			if prev, dup := seen[c.ID]; dup {
				errs = append(errs, fmt.Errorf("%w: %s in both %s and %s", ErrInvariant, c.ID, prev, ref))
				continue
			}
			seen[c.ID] = ref
			if c.ID != cards.MakeID(c.Rank, c.Suit) {
				errs = append(errs, fmt.Errorf("%w: id %q does not match %s of %s", ErrInvariant, c.ID, c.Rank, c.Suit))
			}
		}
		return true
	})
	if len(seen) != cards.DeckSize {
		errs = append(errs, fmt.Errorf("%w: %d distinct cards on the board", ErrInvariant, len(seen)))
	}

	for _, c := range s.Stock {
		if c.FaceUp {
			errs = append(errs, fmt.Errorf("%w: face-up %s in stock", ErrInvariant, c.ID))
		}
	}
	for _, c := range s.Waste {
		if !c.FaceUp {
			errs = append(errs, fmt.Errorf("%w: face-down %s in waste", ErrInvariant, c.ID))
		}
	}

	for i, col := range s.Tableau {
		up := false
		for _, c := range col {
			if c.FaceUp {
				up = true
			} else if up {
				errs = append(errs, fmt.Errorf("%w: face-down %s above a face-up card in %s", ErrInvariant, c.ID, TableauPile(i)))
			}
		}
	}

	for i, f := range s.Foundations {
		for k, c := range f {
			if c.Rank != cards.Rank(k+1) || c.Suit != f[0].Suit || !c.FaceUp {
				errs = append(errs, fmt.Errorf("%w: %s out of sequence in %s", ErrInvariant, c.ID, FoundationPile(i)))
			}
		}
	}
	return errors.Join(errs...)
}
