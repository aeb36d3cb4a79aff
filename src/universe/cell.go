package universe

//Cell is the state of one grid position, Dead is 0 and Alive is 1 so the value can be summed directly
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

const (
	DeadGlyph  = '☐'
	AliveGlyph = '■'
)

//Toggle flips the cell state
func (c *Cell) Toggle() {
	if *c == Alive {
		*c = Dead
	} else {
		*c = Alive
	}
}

func (c Cell) IsAlive() bool {
	return c == Alive
}

//Glyph returns the character used to render the cell
func (c Cell) Glyph() rune {
	if c == Dead {
		return DeadGlyph
	}
	return AliveGlyph
}

func (c Cell) String() string {
	if c == Alive {
		return "Alive"
	}
	return "Dead"
}
