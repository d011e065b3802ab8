package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Frames []ExportFrame `json:"frames"`
}

type ExportFrame struct {
	Time   float64      `json:"time"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportBody struct {
	ID       int        `json:"id"`
	Position [2]float64 `json:"position"`
	Velocity [2]float64 `json:"velocity"`
	Rotation float64    `json:"rotation"`
}

// ExportJSON writes metadata and frames as one indented document.
func ExportJSON(w io.Writer, meta RunMetadata, frames []dynamo.Frame) error {
	data := ExportData{
		RunMetadata: meta,
		Frames:      make([]ExportFrame, len(frames)),
	}
	for i, f := range frames {
		ef := ExportFrame{Time: f.Time, Bodies: make([]ExportBody, len(f.Bodies))}
		for j, b := range f.Bodies {
			ef.Bodies[j] = ExportBody{
				ID:       b.ID,
				Position: [2]float64{b.Position.X(), b.Position.Y()},
				Velocity: [2]float64{b.Velocity.X(), b.Velocity.Y()},
				Rotation: b.Rotation,
			}
		}
		data.Frames[i] = ef
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
