package storage

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

// FrameRow is one body at one instant, the row type of frames.csv.
type FrameRow struct {
	Time     float64 `csv:"time"`
	Body     int     `csv:"body"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	VX       float64 `csv:"vx"`
	VY       float64 `csv:"vy"`
	Rotation float64 `csv:"rotation"`
}

// Rows flattens frames into one row per body per frame.
func Rows(frames []dynamo.Frame) []*FrameRow {
	n := 0
	for _, f := range frames {
		n += len(f.Bodies)
	}
	rows := make([]*FrameRow, 0, n)
	for _, f := range frames {
		for _, b := range f.Bodies {
			rows = append(rows, &FrameRow{
				Time:     f.Time,
				Body:     b.ID,
				X:        b.Position.X(),
				Y:        b.Position.Y(),
				VX:       b.Velocity.X(),
				VY:       b.Velocity.Y(),
				Rotation: b.Rotation,
			})
		}
	}
	return rows
}

func WriteFramesCSV(w io.Writer, frames []dynamo.Frame) error {
	return gocsv.Marshal(Rows(frames), w)
}

// ReadFramesCSV regroups rows into frames. Consecutive rows with the same
// time belong to one frame.
func ReadFramesCSV(r io.Reader) ([]dynamo.Frame, error) {
	var rows []*FrameRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}

	frames := make([]dynamo.Frame, 0)
	for _, row := range rows {
		if len(frames) == 0 || frames[len(frames)-1].Time != row.Time {
			frames = append(frames, dynamo.Frame{Time: row.Time})
		}
		f := &frames[len(frames)-1]
		f.Bodies = append(f.Bodies, dynamo.BodyState{
			ID:       row.Body,
			Position: dynamo.Vec2{row.X, row.Y},
			Velocity: dynamo.Vec2{row.VX, row.VY},
			Rotation: row.Rotation,
		})
	}
	return frames, nil
}
