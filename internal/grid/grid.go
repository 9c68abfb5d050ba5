// Package grid builds the arrow grid and resolves taps against it.
package grid

import (
	"fmt"
	"math/rand"
	"time"
)

// Size is the number of rows and columns.
const Size = 4

// Cells is the number of cells in a grid.
const Cells = Size * Size

// Symbol is an arrow direction.
type Symbol int

// Up is the target symbol; it must stay the first value.
const (
	Up Symbol = iota
	Down
	Left
	Right
	symbolCount
)

// Target is the symbol a hit must select.
const Target = Up

func (s Symbol) String() string {
	switch s {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("symbol(%d)", int(s))
	}
}

// Glyph returns the arrow character used to draw the symbol.
func (s Symbol) Glyph() string {
	switch s {
	case Up:
		return "↑"
	case Down:
		return "↓"
	case Left:
		return "←"
	case Right:
		return "→"
	default:
		return "?"
	}
}

// Grid is a row-major 4x4 arrangement of symbols.
type Grid [Cells]Symbol

// Board holds the current grid and the random source used to redraw it.
type Board struct {
	rnd   *rand.Rand
	cells Grid
}

// New returns a Board seeded with the current time.
func New() *Board {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Board with a deterministic random source.
func NewWithSeed(seed int64) *Board {
	b := &Board{rnd: rand.New(rand.NewSource(seed))}
	b.Generate()
	return b
}

// Generate redraws every cell from the non-target symbols and pins the
// target to one random cell.
func (b *Board) Generate() {
	nonTarget := int(symbolCount) - 1
	for i := range b.cells {
		b.cells[i] = Symbol(b.rnd.Intn(nonTarget) + 1)
	}
	b.cells[b.rnd.Intn(Cells)] = Target
}

// ResolveTap reports whether the cell at index holds the target. A hit
// regenerates the grid before returning.
func (b *Board) ResolveTap(index int) bool {
	hit := b.At(index) == Target
	if hit {
		b.Generate()
	}
	return hit
}

// At returns the symbol at index. It panics when index is out of range.
func (b *Board) At(index int) Symbol {
	if index < 0 || index >= Cells {
		panic(fmt.Sprintf("grid: cell index %d out of range [0,%d)", index, Cells))
	}
	return b.cells[index]
}

// Cells returns a copy of the current grid.
func (b *Board) Cells() Grid {
	return b.cells
}

// TargetIndex returns the index of the target cell.
func (b *Board) TargetIndex() int {
	for i, s := range b.cells {
		if s == Target {
			return i
		}
	}
	return -1
}

// Index converts a row and column into a cell index.
func Index(row, col int) int {
	return row*Size + col
}
