package viz

import "strings"

// blank is the empty braille cell. Each cell holds 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
const blank rune = 0x2800

var dotBit = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dot coordinates, so a
// Width x Height canvas has Width*2 x Height*4 dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// cell returns the rune holding dot (x, y) and its bit, or nil off canvas.
func (c *Canvas) cell(x, y int) (*rune, rune) {
	if x < 0 || y < 0 || x >= c.Width*2 || y >= c.Height*4 {
		return nil, 0
	}
	return &c.Grid[y/4][x/2], dotBit[y%4][x%2]
}

func (c *Canvas) Set(x, y int) {
	if r, bit := c.cell(x, y); r != nil {
		*r |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if r, bit := c.cell(x, y); r != nil {
		*r &^= bit
	}
}

// Lit reports whether dot (x, y) is raised.
func (c *Canvas) Lit(x, y int) bool {
	r, bit := c.cell(x, y)
	return r != nil && *r&bit != 0
}

func (c *Canvas) Clear() {
	for _, row := range c.Grid {
		for j := range row {
			row[j] = blank
		}
	}
}

// DrawLine walks from (x0, y0) to (x1, y1) with Bresenham steps.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawPolygon draws a closed outline through pts.
func (c *Canvas) DrawPolygon(pts [][2]int) {
	for i := range pts {
		j := (i + 1) % len(pts)
		c.DrawLine(pts[i][0], pts[i][1], pts[j][0], pts[j][1])
	}
}

// DrawDashed draws a line that alternates dash-long on and off runs.
func (c *Canvas) DrawDashed(x0, y0, x1, y1, dash int) {
	dash = max(dash, 1)
	n := max(absInt(x1-x0), absInt(y1-y0))
	if n == 0 {
		c.Set(x0, y0)
		return
	}
	for i := 0; i <= n; i++ {
		if (i/dash)%2 == 1 {
			continue
		}
		c.Set(x0+(x1-x0)*i/n, y0+(y1-y0)*i/n)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
