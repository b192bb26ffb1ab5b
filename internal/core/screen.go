package core

import "strings"

// Cell is one character position on the screen.
type Cell struct {
	Rune  rune
	Color Color
}

var blank = Cell{Rune: ' ', Color: ColorDefault}

// Screen is a grid of coloured cells. Drawing never touches the terminal;
// the platform layer turns rows into styled strings.
type Screen struct {
	width  int
	height int
	cells  []Cell
}

// NewScreen creates a blank screen.
func NewScreen(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

// Width returns the screen width in cells.
func (s *Screen) Width() int { return s.width }

// Height returns the screen height in cells.
func (s *Screen) Height() int { return s.height }

// Resize changes the dimensions and clears the screen.
func (s *Screen) Resize(width, height int) {
	s.width = Max(width, 0)
	s.height = Max(height, 0)
	if n := s.width * s.height; cap(s.cells) >= n {
		s.cells = s.cells[:n]
	} else {
		s.cells = make([]Cell, n)
	}
	s.Clear()
}

// Clear blanks every cell.
func (s *Screen) Clear() {
	for i := range s.cells {
		s.cells[i] = blank
	}
}

// Set writes one cell. Out-of-bounds writes are ignored.
func (s *Screen) Set(x, y int, r rune, c Color) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.cells[y*s.width+x] = Cell{Rune: r, Color: c}
}

// Get returns a cell, or a blank one out of bounds.
func (s *Screen) Get(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return blank
	}
	return s.cells[y*s.width+x]
}

// DrawText writes text starting at (x, y), clipped to the screen.
func (s *Screen) DrawText(x, y int, text string, c Color) {
	i := 0
	for _, r := range text {
		s.Set(x+i, y, r, c)
		i++
	}
}

// DrawTextCentered writes text centred on row y.
func (s *Screen) DrawTextCentered(y int, text string, c Color) {
	n := len([]rune(text))
	s.DrawText((s.width-n)/2, y, text, c)
}

// FillColumn fills column x over rows [top, bottom), clipped to the screen.
func (s *Screen) FillColumn(x, top, bottom int, r rune, c Color) {
	for y := Max(top, 0); y < Min(bottom, s.height); y++ {
		s.Set(x, y, r, c)
	}
}

// DrawBox outlines r with box-drawing characters.
func (s *Screen) DrawBox(r Rect, c Color) {
	if r.Empty() {
		return
	}
	for x := r.X + 1; x < r.Right()-1; x++ {
		s.Set(x, r.Y, '─', c)
		s.Set(x, r.Bottom()-1, '─', c)
	}
	for y := r.Y + 1; y < r.Bottom()-1; y++ {
		s.Set(r.X, y, '│', c)
		s.Set(r.Right()-1, y, '│', c)
	}
	s.Set(r.X, r.Y, '┌', c)
	s.Set(r.Right()-1, r.Y, '┐', c)
	s.Set(r.X, r.Bottom()-1, '└', c)
	s.Set(r.Right()-1, r.Bottom()-1, '┘', c)
}

// FillRect fills r with one cell value.
func (s *Screen) FillRect(r Rect, ch rune, c Color) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			s.Set(x, y, ch, c)
		}
	}
}

// Run is a horizontal stretch of cells sharing one colour.
type Run struct {
	Text  string
	Color Color
}

// Runs splits row y into same-coloured runs, left to right.
func (s *Screen) Runs(y int) []Run {
	if y < 0 || y >= s.height || s.width == 0 {
		return nil
	}
	row := s.cells[y*s.width : (y+1)*s.width]

	var runs []Run
	var sb strings.Builder
	cur := row[0].Color
	for _, cell := range row {
		if cell.Color != cur {
			runs = append(runs, Run{Text: sb.String(), Color: cur})
			sb.Reset()
			cur = cell.Color
		}
		sb.WriteRune(cell.Rune)
	}
	return append(runs, Run{Text: sb.String(), Color: cur})
}

// Row returns row y as plain text.
func (s *Screen) Row(y int) string {
	var sb strings.Builder
	for _, r := range s.Runs(y) {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// String returns the whole screen as plain text, rows joined by newlines.
func (s *Screen) String() string {
	rows := make([]string, s.height)
	for y := range rows {
		rows[y] = s.Row(y)
	}
	return strings.Join(rows, "\n")
}
