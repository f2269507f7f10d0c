// internal/klondike/render.go
//
// Plain-text board rendering for the CLI.
// Responsibilities:
//   - Draw stock, waste and foundations on one line, then the tableau
//     columns side by side with face-down cards shown as "[##]".
package klondike

import (
	"fmt"
	"io"
	"strings"
)

// Render writes a plain-text picture of the board, used by the CLI.
func (s *State) Render(w io.Writer) error {
	var b strings.Builder

	stock := "[  ]"
	if len(s.Stock) > 0 {
		stock = fmt.Sprintf("[%2d]", len(s.Stock))
	}
	waste := "    "
	if top := Top(s.Waste); top != nil {
		waste = fmt.Sprintf("%4s", top.String())
	}
	fmt.Fprintf(&b, "%s %s    ", stock, waste)
	for _, f := range s.Foundations {
		if top := Top(f); top != nil {
			fmt.Fprintf(&b, " %4s", top.String())
		} else {
			b.WriteString(" [  ]")
		}
	}
	fmt.Fprintf(&b, "   score %d  moves %d\n\n", s.Score, s.Moves)

	depth := 0
	for _, col := range s.Tableau {
		depth = max(depth, len(col))
	}
	for row := 0; row < depth; row++ {
		for _, col := range s.Tableau {
			if row < len(col) {
				fmt.Fprintf(&b, " %4s", col[row].String())
			} else {
				b.WriteString("     ")
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
