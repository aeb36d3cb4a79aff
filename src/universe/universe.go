package universe

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"toruslife/src/diagnostics"
	"toruslife/src/telemetry"
)

//AliveProbability is the chance for each cell to be seeded alive by New
const AliveProbability = 0.3

const tickTimerName = "Universe.Tick"

//RandomSource produces uniform values in [0,1), *rand.Rand satisfies it
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

//Coord addresses one cell by row and column
type Coord struct {
	Row uint32
	Col uint32
}

//Generation summarizes the result of one Tick
type Generation struct {
	LiveCells int
	Changed   bool
}

//CoordinateError is the panic value raised when a row or column is outside the grid
type CoordinateError struct {
	Row    uint32
	Col    uint32
	Width  uint32
	Height uint32
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("universe: cell (%d, %d) is outside the %dx%d grid", e.Row, e.Col, e.Width, e.Height)
}

//Universe is a toroidal Game of Life grid stored as a flat row-major buffer.
//It is not safe for concurrent use, Simulation serializes access to it.
type Universe struct {
	width  uint32
	height uint32
	cells  []Cell
}

//New creates the universe where every cell is alive with AliveProbability
func New(width uint32, height uint32) *Universe {
	return NewWithSource(width, height, nil)
}

//NewWithSource is New with an explicit random source, nil means the process-wide one
func NewWithSource(width uint32, height uint32, src RandomSource) *Universe {
	diagnostics.Install()
	if src == nil {
		src = globalSource{}
	}
	cells := make([]Cell, int(width)*int(height))
	for i := range cells {
		if src.Float64() < AliveProbability {
			cells[i] = Alive
		}
	}
	return &Universe{width: width, height: height, cells: cells}
}

//Empty creates the universe with all cells dead
func Empty(width uint32, height uint32) *Universe {
	diagnostics.Install()
	return &Universe{width: width, height: height, cells: deadCells(width, height)}
}

func (u *Universe) Width() uint32 {
	return u.width
}

func (u *Universe) Height() uint32 {
	return u.height
}

//Cells returns the backing buffer in row-major order, callers must not modify it
func (u *Universe) Cells() []Cell {
	return u.cells
}

//Cell returns the state at row, col
func (u *Universe) Cell(row uint32, col uint32) Cell {
	u.mustContain(row, col)
	return u.cells[u.Index(row, col)]
}

//Index returns the flat buffer index of row, col without any bounds check
func (u *Universe) Index(row uint32, col uint32) int {
	return int(row)*int(u.width) + int(col)
}

//LiveNeighbourCount counts alive cells among the 8 wrapped neighbours of row, col
func (u *Universe) LiveNeighbourCount(row uint32, col uint32) uint8 {
	var count uint8
	//height-1 and width-1 are the -1 offsets modulo the dimension
	for _, dr := range [3]uint32{u.height - 1, 0, 1} {
		for _, dc := range [3]uint32{u.width - 1, 0, 1} {
			if dr == 0 && dc == 0 {
				continue
			}
			nr := (row + dr) % u.height
			nc := (col + dc) % u.width
			count += uint8(u.cells[u.Index(nr, nc)])
		}
	}
	return count
}

//Tick advances the universe by one generation.
//The next state is computed into a separate buffer which then replaces the current one.
func (u *Universe) Tick() (g Generation) {
	stop := telemetry.StartTimer(tickTimerName)
	defer stop()

	next := make([]Cell, len(u.cells))
	for row := uint32(0); row < u.height; row++ {
		for col := uint32(0); col < u.width; col++ {
			idx := u.Index(row, col)
			cell := u.cells[idx]
			nextCell := nextState(cell, u.LiveNeighbourCount(row, col))
			if nextCell == Alive {
				g.LiveCells++
			}
			g.Changed = g.Changed || nextCell != cell
			next[idx] = nextCell
		}
	}
	u.cells = next
	return
}

//nextState applies the Life rules to one cell
func nextState(cell Cell, liveNeighbours uint8) Cell {
	switch {
	case cell == Alive && liveNeighbours < 2:
		return Dead
	case cell == Alive && (liveNeighbours == 2 || liveNeighbours == 3):
		return Alive
	case cell == Alive && liveNeighbours > 3:
		return Dead
	case cell == Dead && liveNeighbours == 3:
		return Alive
	}
	return cell
}

//LiveCells counts the alive cells of the whole grid
func (u *Universe) LiveCells() int {
	n := 0
	for _, c := range u.cells {
		n += int(c)
	}
	return n
}

//ToggleCell flips the cell at row, col
func (u *Universe) ToggleCell(row uint32, col uint32) {
	u.mustContain(row, col)
	u.cells[u.Index(row, col)].Toggle()
}

//SetCells makes every listed cell alive, other cells are left as is.
//The whole list is validated before the first write.
func (u *Universe) SetCells(coords []Coord) {
	for _, c := range coords {
		u.mustContain(c.Row, c.Col)
	}
	for _, c := range coords {
		u.cells[u.Index(c.Row, c.Col)] = Alive
	}
}

//gliderPattern is the 3x3 glider centred on the middle cell
var gliderPattern = [3][3]Cell{
	{Alive, Dead, Dead},
	{Dead, Alive, Alive},
	{Alive, Alive, Dead},
}

//InsertGlider overwrites the wrapped 3x3 neighbourhood of row, col with a glider
func (u *Universe) InsertGlider(row uint32, col uint32) {
	u.mustContain(row, col)
	rows := [3]uint32{(row + u.height - 1) % u.height, row, (row + 1) % u.height}
	cols := [3]uint32{(col + u.width - 1) % u.width, col, (col + 1) % u.width}
	for i, r := range rows {
		for j, c := range cols {
			u.cells[u.Index(r, c)] = gliderPattern[i][j]
		}
	}
}

//SetWidth changes the width and resets every cell to dead
func (u *Universe) SetWidth(width uint32) {
	u.width = width
	u.cells = deadCells(u.width, u.height)
}

//SetHeight changes the height and resets every cell to dead
func (u *Universe) SetHeight(height uint32) {
	u.height = height
	u.cells = deadCells(u.width, u.height)
}

//Render returns the grid as text, one line per row
func (u *Universe) Render() string {
	return u.String()
}

func (u *Universe) String() string {
	if u.width == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(u.cells)*utf8.RuneLen(AliveGlyph) + int(u.height))
	w := int(u.width)
	for start := 0; start < len(u.cells); start += w {
		for _, c := range u.cells[start : start+w] {
			b.WriteRune(c.Glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

//Contains reports whether row, col address a cell of the grid
func (u *Universe) Contains(row uint32, col uint32) bool {
	return row < u.height && col < u.width
}

func (u *Universe) mustContain(row uint32, col uint32) {
	if !u.Contains(row, col) {
		panic(&CoordinateError{Row: row, Col: col, Width: u.width, Height: u.height})
	}
}

func deadCells(width uint32, height uint32) []Cell {
	return make([]Cell, int(width)*int(height))
}
