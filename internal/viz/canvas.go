package viz

import (
	"math"
	"strings"

	"github.com/san-kum/aerosim/internal/mesh"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. The canvas holds
// (Width*2) x (Height*4) sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the sub-pixel at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Planform draws the panel edges of m seen from above, span across and
// chord down. A symmetric half mesh is mirrored to the full wing.
func Planform(m *mesh.Mesh, symmetry bool, w, h int) *Canvas {
	c := NewCanvas(w, h)

	type pt struct{ s, x float64 }
	rows := make([][]pt, m.NumX)
	minS, maxS := math.Inf(1), math.Inf(-1)
	minX, maxX := math.Inf(1), math.Inf(-1)
	for i := range rows {
		for j := 0; j < m.NumY; j++ {
			p := m.At(i, j)
			rows[i] = append(rows[i], pt{p.Y, p.X})
		}
		if symmetry {
			for j := m.NumY - 2; j >= 0; j-- {
				p := m.At(i, j)
				rows[i] = append(rows[i], pt{-p.Y, p.X})
			}
		}
		for _, p := range rows[i] {
			minS, maxS = math.Min(minS, p.s), math.Max(maxS, p.s)
			minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		}
	}

	pw, ph := float64(2*w-1), float64(4*h-1)
	scale := math.Min(pw/math.Max(maxS-minS, 1e-12), ph/math.Max(maxX-minX, 1e-12))
	offS := (pw - scale*(maxS-minS)) / 2
	offX := (ph - scale*(maxX-minX)) / 2
	px := func(p pt) (int, int) {
		return int(math.Round(offS + scale*(p.s-minS))), int(math.Round(offX + scale*(p.x-minX)))
	}

	for i, row := range rows {
		for j := range row {
			x0, y0 := px(row[j])
			if j+1 < len(row) {
				x1, y1 := px(row[j+1])
				c.DrawLine(x0, y0, x1, y1)
			}
			if i+1 < len(rows) {
				x1, y1 := px(rows[i+1][j])
				c.DrawLine(x0, y0, x1, y1)
			}
		}
	}
	return c
}
