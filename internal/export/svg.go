package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/impulse2d/internal/collision"
	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/viz"
)

// CanvasToSVG draws every raised braille dot of canvas as a circle, scale
// pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w := int(float64(canvas.Width) * 2 * scale)
	h := int(float64(canvas.Height) * 4 * scale)
	var sb strings.Builder
	header(&sb, w, h)
	sb.WriteString(`<g fill="#00ff88">` + "\n")

	for y := range canvas.Height * 4 {
		for x := range canvas.Width * 2 {
			if !canvas.Lit(x, y) {
				continue
			}
			cx := (float64(x) + 0.5) * scale
			cy := (float64(y) + 0.5) * scale
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", cx, cy, scale*0.4)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

var palette = []string{"#00ccff", "#ff00ff", "#00ff88", "#ffaa00", "#ff4444", "#aa88ff"}

// bounds is a world-space rectangle mapped onto the SVG viewport. World and
// SVG both grow y downward, so no flip is needed.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func newBounds() bounds {
	return bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

func (b *bounds) add(p dynamo.Vec2) {
	b.minX = math.Min(b.minX, p.X())
	b.minY = math.Min(b.minY, p.Y())
	b.maxX = math.Max(b.maxX, p.X())
	b.maxY = math.Max(b.maxY, p.Y())
}

// pad adds 10% on each side and keeps the aspect ratio of the viewport.
func (b *bounds) pad(width, height int) {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1

	scale := math.Max((b.maxX-b.minX)/float64(width), (b.maxY-b.minY)/float64(height))
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	b.minX, b.maxX = cx-scale*float64(width)/2, cx+scale*float64(width)/2
	b.minY, b.maxY = cy-scale*float64(height)/2, cy+scale*float64(height)/2
}

func (b bounds) project(p dynamo.Vec2, width, height int) (float64, float64) {
	x := (p.X() - b.minX) / (b.maxX - b.minX) * float64(width)
	y := (p.Y() - b.minY) / (b.maxY - b.minY) * float64(height)
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

func corners(b dynamo.BodyState) [4]dynamo.Vec2 {
	return collision.NewShape(collision.BoxFromSize(b.Size), b.Position, b.Rotation).Vertices
}

// FrameToSVG draws every body of f as its oriented rectangle. Immovable
// bodies are grey; a body with no size is drawn as a dot.
func FrameToSVG(f dynamo.Frame, width, height int) string {
	if len(f.Bodies) == 0 {
		return ""
	}

	bb := newBounds()
	for _, b := range f.Bodies {
		for _, v := range corners(b) {
			bb.add(v)
		}
	}
	bb.pad(width, height)

	var sb strings.Builder
	header(&sb, width, height)

	for i, b := range f.Bodies {
		color := palette[i%len(palette)]
		if !b.Movable() {
			color = "#666688"
		}

		if b.Size.X() == 0 && b.Size.Y() == 0 {
			x, y := bb.project(b.Position, width, height)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="2" fill="%s"/>
`, x, y, color))
			continue
		}

		sb.WriteString(`<polygon points="`)
		for j, v := range corners(b) {
			x, y := bb.project(v, width, height)
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		sb.WriteString(fmt.Sprintf(`" fill="none" stroke="%s" stroke-width="1.5"/>
`, color))
	}

	sb.WriteString(fmt.Sprintf(`<text x="8" y="16" fill="#888899" font-family="monospace" font-size="12">t=%.3fs</text>
</svg>`, f.Time))
	return sb.String()
}

// TrajectoryToSVG draws the path of every movable body across frames and
// outlines the bodies at their last position.
func TrajectoryToSVG(frames []dynamo.Frame, width, height int) string {
	if len(frames) < 2 {
		return ""
	}

	paths := make(map[int][]dynamo.Vec2)
	var order []int
	bb := newBounds()
	for _, f := range frames {
		for _, b := range f.Bodies {
			if !b.Movable() {
				continue
			}
			if _, ok := paths[b.ID]; !ok {
				order = append(order, b.ID)
			}
			paths[b.ID] = append(paths[b.ID], b.Position)
			bb.add(b.Position)
		}
	}
	last := frames[len(frames)-1]
	for _, b := range last.Bodies {
		for _, v := range corners(b) {
			bb.add(v)
		}
	}
	bb.pad(width, height)

	var sb strings.Builder
	header(&sb, width, height)

	for i, id := range order {
		pts := paths[id]
		if len(pts) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, palette[i%len(palette)]))
		for j, p := range pts {
			x, y := bb.project(p, width, height)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	for _, b := range last.Bodies {
		if b.Size.X() == 0 && b.Size.Y() == 0 {
			continue
		}
		sb.WriteString(`<polygon points="`)
		for j, v := range corners(b) {
			x, y := bb.project(v, width, height)
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		sb.WriteString("\" fill=\"none\" stroke=\"#888899\" stroke-width=\"1\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
