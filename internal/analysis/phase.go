package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

// Coordinate selects one scalar of a body state.
type Coordinate int

const (
	X Coordinate = iota
	Y
	VX
	VY
	Rotation
	Speed
)

var coordinateNames = map[string]Coordinate{
	"x": X, "y": Y, "vx": VX, "vy": VY, "rotation": Rotation, "speed": Speed,
}

// ParseCoordinate maps a name such as "vy" to its Coordinate.
func ParseCoordinate(name string) (Coordinate, error) {
	c, ok := coordinateNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown coordinate: %s", name)
	}
	return c, nil
}

func (c Coordinate) of(b dynamo.BodyState) float64 {
	switch c {
	case X:
		return b.Position.X()
	case Y:
		return b.Position.Y()
	case VX:
		return b.Velocity.X()
	case VY:
		return b.Velocity.Y()
	case Rotation:
		return b.Rotation
	default:
		return b.Velocity.Len()
	}
}

// Extract returns one coordinate of body id across frames, with the frame times.
// Frames in which the body is absent are skipped.
func Extract(frames []dynamo.Frame, id int, c Coordinate) (values, times []float64) {
	values = make([]float64, 0, len(frames))
	times = make([]float64, 0, len(frames))
	for _, f := range frames {
		for _, b := range f.Bodies {
			if b.ID == id {
				values = append(values, c.of(b))
				times = append(times, f.Time)
				break
			}
		}
	}
	return values, times
}

// Portrait is a trajectory in the plane of two coordinates of one body.
type Portrait struct {
	XAxis, YAxis Coordinate
	Xs, Ys       []float64
}

// PhasePortrait pairs two coordinates of one body over a recorded run.
// It returns nil when the body never appears.
func PhasePortrait(frames []dynamo.Frame, id int, xc, yc Coordinate) *Portrait {
	xs, _ := Extract(frames, id, xc)
	if len(xs) == 0 {
		return nil
	}
	ys, _ := Extract(frames, id, yc)
	return &Portrait{XAxis: xc, YAxis: yc, Xs: xs, Ys: ys}
}

// span is a padded [lo, hi] range along one axis.
type span struct{ lo, hi float64 }

func spanOf(v []float64) span {
	lo, hi := floats.Min(v), floats.Max(v)
	pad := max(hi-lo, 1) * 0.1
	return span{lo - pad, hi + pad}
}

// cell maps v onto [0, n).
func (s span) cell(v float64, n int) int {
	return int((v - s.lo) / (s.hi - s.lo) * float64(n-1))
}

// PhasePortraitToASCII plots p on a width x height character grid with
// the zero axes drawn where they are in view.
func PhasePortraitToASCII(p *Portrait, width, height int) string {
	if p == nil || len(p.Xs) == 0 || width < 2 || height < 2 {
		return ""
	}
	sx, sy := spanOf(p.Xs), spanOf(p.Ys)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	if sx.lo <= 0 && sx.hi >= 0 {
		col := sx.cell(0, width)
		for row := range grid {
			grid[row][col] = '│'
		}
	}
	if sy.lo <= 0 && sy.hi >= 0 {
		row := height - 1 - sy.cell(0, height)
		for col := range grid[row] {
			if grid[row][col] == '│' {
				grid[row][col] = '┼'
			} else {
				grid[row][col] = '─'
			}
		}
	}

	for i := range p.Xs {
		grid[height-1-sy.cell(p.Ys[i], height)][sx.cell(p.Xs[i], width)] = '•'
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which values rise through threshold.
func Crossings(values, times []float64, threshold float64) []float64 {
	var out []float64
	for i := 1; i < len(values) && i < len(times); i++ {
		prev, curr := values[i-1], values[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period is the mean spacing of rising crossings through the series mean.
// ok is false with fewer than two crossings.
func Period(values, times []float64) (period float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	cs := Crossings(values, times, stat.Mean(values, nil))
	if len(cs) < 2 {
		return 0, false
	}
	return (cs[len(cs)-1] - cs[0]) / float64(len(cs)-1), true
}
