// Package storage persists runs as a directory of metadata.json and frames.csv.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// BodyInfo is the static part of a body, which frames.csv does not repeat.
type BodyInfo struct {
	ID          int        `json:"id"`
	Name        string     `json:"name,omitempty"`
	Size        [2]float64 `json:"size"`
	InverseMass float64    `json:"inverse_mass"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Bodies     []BodyInfo         `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Describe builds metadata for a run. names maps body IDs to labels and may be nil.
func Describe(scene, integrator string, cfg sim.RunConfig, result *sim.Result, names map[int]string) RunMetadata {
	meta := RunMetadata{
		Scene:      scene,
		Timestamp:  time.Now(),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: integrator,
		Steps:      result.StepsTaken,
		Metrics:    result.Metrics,
	}
	if len(result.Frames) > 0 {
		for _, b := range result.Frames[0].Bodies {
			meta.Bodies = append(meta.Bodies, BodyInfo{
				ID:          b.ID,
				Name:        names[b.ID],
				Size:        [2]float64{b.Size.X(), b.Size.Y()},
				InverseMass: b.InverseMass,
			})
		}
	}
	return meta
}

// Save writes a new run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, frames []dynamo.Frame) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Scene, meta.Timestamp.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 2; ; n++ {
		if _, err := os.Stat(runDir); errors.Is(err, fs.ErrNotExist) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", meta.Scene, meta.Timestamp.Unix(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return "", err
	}
	err = writeFile(filepath.Join(runDir, framesFile), func(w io.Writer) error {
		return WriteFramesCSV(w, frames)
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// writeFile creates path and reports the first of the write and close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

// List returns the metadata of every run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads frames.csv back, restoring sizes and masses from metadata.
func (s *Store) LoadFrames(runID string) ([]dynamo.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	frames, err := ReadFramesCSV(file)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	info := make(map[int]BodyInfo, len(meta.Bodies))
	for _, b := range meta.Bodies {
		info[b.ID] = b
	}
	for _, f := range frames {
		for i := range f.Bodies {
			if bi, ok := info[f.Bodies[i].ID]; ok {
				f.Bodies[i].Size = dynamo.Vec2{bi.Size[0], bi.Size[1]}
				f.Bodies[i].InverseMass = bi.InverseMass
			}
		}
	}
	return frames, nil
}

// Latest returns the ID of the newest run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs in %s", s.baseDir)
	}
	return runs[len(runs)-1].ID, nil
}
