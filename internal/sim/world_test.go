package sim

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

func newWorld(t *testing.T, cfg Config) *World {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"zero damping", func(c *Config) { c.Damping = 0 }, false},
		{"damping above one", func(c *Config) { c.Damping = 1.5 }, false},
		{"restitution above one", func(c *Config) { c.Restitution = 2 }, false},
		{"zero rate", func(c *Config) { c.RateHz = 0 }, false},
		{"negative drag", func(c *Config) { c.DragK2 = -1 }, false},
		{"nan restitution", func(c *Config) { c.Restitution = math.NaN() }, false},
		{"nan rate", func(c *Config) { c.RateHz = math.NaN() }, false},
		{"infinite rate", func(c *Config) { c.RateHz = math.Inf(1) }, false},
		{"nan gravity", func(c *Config) { c.Gravity = math.NaN() }, false},
		{"infinite gravity", func(c *Config) { c.Gravity = math.Inf(-1) }, false},
		{"nan drag", func(c *Config) { c.DragK1 = math.NaN() }, false},
		{"infinite drag", func(c *Config) { c.DragK2 = math.Inf(1) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestCreateBodyDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Damping = 0.8
	w := newWorld(t, cfg)

	h, err := w.CreateBody(BodyDef{Size: dynamo.Vec2{4, 2}, Position: dynamo.Vec2{1, 2}, InverseMass: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := w.Body(h)
	if err != nil {
		t.Fatal(err)
	}
	if b.Damping != 0.8 {
		t.Errorf("damping = %v, want world default 0.8", b.Damping)
	}
	size, _ := w.Size(h)
	if size != (dynamo.Vec2{4, 2}) {
		t.Errorf("size = %v", size)
	}
	tr, _ := w.Transform(h)
	if tr.Position != (dynamo.Vec2{1, 2}) || tr.Rotation != 0 {
		t.Errorf("transform = %+v", tr)
	}
}

func TestCreateBodyRejects(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	bad, nan := 1.5, math.NaN()

	tests := []struct {
		name string
		def  BodyDef
		want error
	}{
		{"negative inverse mass", BodyDef{InverseMass: -1}, dynamo.ErrInvalidMass},
		{"damping above one", BodyDef{InverseMass: 1, Damping: 2}, dynamo.ErrInvalidDamping},
		{"negative size", BodyDef{Size: dynamo.Vec2{-1, 1}}, dynamo.ErrDegenerateGeometry},
		{"nan position", BodyDef{Position: dynamo.Vec2{math.NaN(), 0}}, dynamo.ErrInvalidState},
		{"restitution", BodyDef{Restitution: &bad}, nil},
		{"nan restitution", BodyDef{Restitution: &nan}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.CreateBody(tt.def)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if w.Len() != 0 {
		t.Errorf("rejected bodies were stored: %d", w.Len())
	}
}

func TestAddSpringValidation(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	a, _ := w.CreateBody(BodyDef{InverseMass: 1})
	b, _ := w.CreateBody(BodyDef{InverseMass: 1, Position: dynamo.Vec2{0, 5}})

	if err := w.AddSpring(a, b, 2, 1); err != nil {
		t.Fatalf("valid spring: %v", err)
	}
	if err := w.AddSpring(a, a, 2, 1); !errors.Is(err, dynamo.ErrInvalidSpring) {
		t.Errorf("self spring err = %v", err)
	}
	if err := w.AddSpring(a, b, -2, 1); !errors.Is(err, dynamo.ErrInvalidSpring) {
		t.Errorf("negative k err = %v", err)
	}

	c, _ := w.CreateBody(BodyDef{InverseMass: 1})
	if err := w.RemoveBody(c); err != nil {
		t.Fatal(err)
	}
	if err := w.AddSpring(a, c, 1, 1); !errors.Is(err, dynamo.ErrInvalidHandle) {
		t.Errorf("stale endpoint err = %v", err)
	}
	if len(w.Springs()) != 1 {
		t.Errorf("springs = %d, want 1", len(w.Springs()))
	}
}

func TestRemoveBody(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	a, _ := w.CreateBody(BodyDef{InverseMass: 1})
	b, _ := w.CreateBody(BodyDef{InverseMass: 1, Position: dynamo.Vec2{0, 5}})
	c, _ := w.CreateBody(BodyDef{InverseMass: 1, Position: dynamo.Vec2{0, 9}})
	if err := w.AddSpring(a, b, 1, 1); err != nil {
		t.Fatal(err)
	}

	if err := w.RemoveBody(a); !errors.Is(err, dynamo.ErrBodyInUse) {
		t.Errorf("remove linked body err = %v", err)
	}
	if err := w.RemoveBody(c); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := w.Transform(c); !errors.Is(err, dynamo.ErrInvalidHandle) {
		t.Errorf("transform of removed body err = %v", err)
	}
	if err := w.RemoveBody(c); !errors.Is(err, dynamo.ErrInvalidHandle) {
		t.Errorf("double remove err = %v", err)
	}

	d, _ := w.CreateBody(BodyDef{InverseMass: 1, Size: dynamo.Vec2{3, 3}})
	if d.Index() != c.Index() || d == c {
		t.Errorf("slot not reused with new generation: %v vs %v", d, c)
	}
	size, _ := w.Size(d)
	if size != (dynamo.Vec2{3, 3}) {
		t.Errorf("reused slot size = %v", size)
	}
}

func TestAdvanceRejectsBadDt(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	for _, dt := range []float64{0, -0.01, math.NaN(), math.Inf(1)} {
		if err := w.Advance(dt); !errors.Is(err, dynamo.ErrNonPositiveDt) {
			t.Errorf("Advance(%v) err = %v", dt, err)
		}
	}
	if w.Ticks() != 0 || w.Time() != 0 {
		t.Errorf("rejected ticks advanced the clock: %d %v", w.Ticks(), w.Time())
	}
}

func TestAdvanceCountsTime(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	for i := 0; i < 4; i++ {
		if err := w.Advance(0.25); err != nil {
			t.Fatal(err)
		}
	}
	if w.Ticks() != 4 || math.Abs(w.Time()-1) > 1e-12 {
		t.Errorf("ticks=%d time=%v", w.Ticks(), w.Time())
	}
}

func TestAdvanceInvalidStateIsStepError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = math.MaxFloat64
	w := newWorld(t, cfg)
	if _, err := w.CreateBody(BodyDef{InverseMass: 1e-300, Velocity: dynamo.Vec2{0, math.MaxFloat64}}); err != nil {
		t.Fatal(err)
	}

	err := w.Advance(10)
	var se *dynamo.StepError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StepError", err)
	}
	if !errors.Is(err, dynamo.ErrInvalidState) || se.Tick != 0 {
		t.Errorf("step error = %+v", se)
	}
}

func TestDegenerateSpringIsSkipped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.Collisions = false
	w := newWorld(t, cfg)
	a, _ := w.CreateBody(BodyDef{InverseMass: 1, Damping: 1})
	b, _ := w.CreateBody(BodyDef{InverseMass: 1, Damping: 1})
	if err := w.AddSpring(a, b, 5, 1); err != nil {
		t.Fatal(err)
	}

	if err := w.Advance(0.01); err != nil {
		t.Fatalf("degenerate spring aborted the tick: %v", err)
	}
	ba, _ := w.Body(a)
	if ba.Velocity != (dynamo.Vec2{}) {
		t.Errorf("skipped spring still moved a: %v", ba.Velocity)
	}
}

// warnCounter counts records at Warn and above.
type warnCounter struct{ n int }

func (c *warnCounter) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelWarn }
func (c *warnCounter) Handle(context.Context, slog.Record) error  { c.n++; return nil }
func (c *warnCounter) WithAttrs([]slog.Attr) slog.Handler          { return c }
func (c *warnCounter) WithGroup(string) slog.Handler               { return c }

func TestFlatBodyNeverCollides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.Collisions = true
	var warns warnCounter
	w, err := New(cfg, WithLogger(slog.New(&warns)))
	if err != nil {
		t.Fatal(err)
	}
	flat, _ := w.CreateBody(BodyDef{Size: dynamo.Vec2{10, 0}, InverseMass: 1})
	if _, err := w.CreateBody(BodyDef{Size: dynamo.Vec2{10, 10}, Position: dynamo.Vec2{100, 0}, InverseMass: 1}); err != nil {
		t.Fatal(err)
	}
	// overlapping the flat one
	if _, err := w.CreateBody(BodyDef{Size: dynamo.Vec2{10, 10}, Position: dynamo.Vec2{2, 0}}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		if err := w.Advance(0.01); err != nil {
			t.Fatal(err)
		}
	}
	if warns.n != 0 {
		t.Errorf("flat body produced %d warnings", warns.n)
	}
	if len(w.Contacts()) != 0 {
		t.Errorf("flat body made contacts: %+v", w.Contacts())
	}
	if b, _ := w.Body(flat); b.Position != (dynamo.Vec2{}) {
		t.Errorf("flat body was pushed to %v", b.Position)
	}
}

func TestContactRestitution(t *testing.T) {
	low, high := 0.2, 0.9

	tests := []struct {
		name   string
		ra, rb *float64
		want   float64
	}{
		{"world default", nil, nil, 0.5},
		{"one override", &high, nil, 0.5},
		{"both overrides take min", &high, &low, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Gravity = 0
			w := newWorld(t, cfg)
			w.CreateBody(BodyDef{Size: dynamo.Vec2{10, 10}, InverseMass: 1, Restitution: tt.ra})
			w.CreateBody(BodyDef{Size: dynamo.Vec2{10, 10}, Position: dynamo.Vec2{8, 0}, InverseMass: 1, Restitution: tt.rb})

			if err := w.Advance(0.01); err != nil {
				t.Fatal(err)
			}
			cs := w.Contacts()
			if len(cs) != 1 {
				t.Fatalf("contacts = %d, want 1", len(cs))
			}
			if cs[0].Restitution != tt.want {
				t.Errorf("restitution = %v, want %v", cs[0].Restitution, tt.want)
			}
			if math.Abs(cs[0].Penetration-2) > 1e-9 {
				t.Errorf("penetration = %v, want 2", cs[0].Penetration)
			}
		})
	}
}

func TestCollisionsOff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collisions = false
	w := newWorld(t, cfg)
	w.CreateBody(BodyDef{Size: dynamo.Vec2{10, 10}, InverseMass: 1})
	w.CreateBody(BodyDef{Size: dynamo.Vec2{10, 10}, InverseMass: 1})

	if err := w.Advance(0.01); err != nil {
		t.Fatal(err)
	}
	if len(w.Contacts()) != 0 || w.LastStats().Contacts != 0 {
		t.Errorf("contacts detected with collisions off")
	}
}

func TestSnapshotSlotOrder(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	a, _ := w.CreateBody(BodyDef{Size: dynamo.Vec2{1, 1}})
	b, _ := w.CreateBody(BodyDef{Size: dynamo.Vec2{2, 2}, InverseMass: 1})
	w.RemoveBody(a)

	snap := w.Snapshot()
	if len(snap) != 1 || snap[0].ID != b.Index() || snap[0].Size != (dynamo.Vec2{2, 2}) {
		t.Errorf("snapshot = %+v", snap)
	}
	if !snap[0].Movable() || snap[0].Mass() != 1 {
		t.Errorf("mass props = %+v", snap[0])
	}
}
