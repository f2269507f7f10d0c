// internal/cards/deck.go
//
// Deck construction and seeded shuffling.
// Responsibilities:
//   - Build the 52-card deck in a fixed suit/rank order.
//   - Shuffle with a PCG source so a seed always gives the same deal.
//   - Pick a random non-zero seed when the caller has none.
package cards

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// NewDeck returns all 52 cards face down, ordered by suit then rank.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := Ace; r <= King; r++ {
			deck = append(deck, New(r, s))
		}
	}
	return deck
}

// Shuffle returns a Fisher-Yates shuffled copy of deck. The input slice is
// left untouched.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// CreateDeck returns a freshly shuffled 52-card deck.
func CreateDeck(rng *rand.Rand) []Card {
	return Shuffle(NewDeck(), rng)
}

// NewRand returns a deterministic generator for seed. A zero seed is
// replaced by one read from crypto/rand; the seed actually used is returned
// so a deal can be replayed.
func NewRand(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = RandomSeed()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed
}

// RandomSeed returns a non-zero seed from crypto/rand.
func RandomSeed() uint64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	if s := binary.LittleEndian.Uint64(b[:]); s != 0 {
		return s
	}
	return 1
}
