package sim

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/impulse2d/internal/body"
	"github.com/san-kum/impulse2d/internal/dynamo"
)

func mustWorld(cfg Config) *World {
	w, err := New(cfg)
	Expect(err).NotTo(HaveOccurred())
	return w
}

func mustBody(w *World, def BodyDef) body.Handle {
	h, err := w.CreateBody(def)
	Expect(err).NotTo(HaveOccurred())
	return h
}

func advance(w *World, dt float64, n int) {
	for i := 0; i < n; i++ {
		Expect(w.Advance(dt)).To(Succeed())
	}
}

func bodyOf(w *World, h body.Handle) body.Body {
	b, err := w.Body(h)
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("World", func() {
	Describe("immovable bodies", func() {
		It("are never moved by forces or contacts", func() {
			cfg := DefaultConfig()
			cfg.Restitution = 0.5
			w := mustWorld(cfg)

			floor := mustBody(w, BodyDef{
				Size:     dynamo.Vec2{200, 10},
				Position: dynamo.Vec2{0, 100},
				Velocity: dynamo.Vec2{3, -1},
			})
			ball := mustBody(w, BodyDef{Size: dynamo.Vec2{10, 10}, Position: dynamo.Vec2{0, 60}, InverseMass: 1})
			mustBody(w, BodyDef{Size: dynamo.Vec2{10, 10}, Position: dynamo.Vec2{4, 98}, InverseMass: 0.5})
			Expect(w.AddSpring(floor, ball, 20, 5)).To(Succeed())

			for i := 0; i < 2000; i++ {
				Expect(w.Advance(1.0 / 240)).To(Succeed())
				b := bodyOf(w, floor)
				Expect(b.Position).To(Equal(dynamo.Vec2{0, 100}))
				Expect(b.Velocity).To(Equal(dynamo.Vec2{3, -1}))
			}
		})
	})

	Describe("a box resting on a floor", func() {
		const g, dt = 10.0, 1.0 / 240
		var (
			w   *World
			box body.Handle
		)

		BeforeEach(func() {
			cfg := DefaultConfig()
			cfg.Gravity = g
			cfg.Restitution = 0
			w = mustWorld(cfg)
			mustBody(w, BodyDef{Size: dynamo.Vec2{200, 10}, Position: dynamo.Vec2{0, 100}})
			box = mustBody(w, BodyDef{Size: dynamo.Vec2{10, 10}, Position: dynamo.Vec2{0, 90}, InverseMass: 1, Damping: 1})
		})

		It("does not gain energy from gravity", func() {
			maxSpeed, maxSink := 0.0, 0.0
			for i := 0; i < 5000; i++ {
				Expect(w.Advance(dt)).To(Succeed())
				b := bodyOf(w, box)
				maxSpeed = math.Max(maxSpeed, b.Velocity.Len())
				maxSink = math.Max(maxSink, b.Position.Y()-90)
				Expect(b.Position.X()).To(Equal(0.0))
			}
			Expect(maxSpeed).To(BeNumerically("<=", 2*g*dt*1.01))
			Expect(maxSink).To(BeNumerically("<=", g*dt*dt*1.01+1e-9))
		})

		It("keeps the same bound late in the run as early on", func() {
			early := 0.0
			for i := 0; i < 500; i++ {
				Expect(w.Advance(dt)).To(Succeed())
				early = math.Max(early, bodyOf(w, box).Velocity.Len())
			}
			late := 0.0
			for i := 0; i < 5000; i++ {
				Expect(w.Advance(dt)).To(Succeed())
				late = math.Max(late, bodyOf(w, box).Velocity.Len())
			}
			Expect(late).To(BeNumerically("<=", early*1.0001))
		})
	})

	Describe("a dropped box", func() {
		It("bounces and settles on the floor", func() {
			cfg := DefaultConfig()
			cfg.Restitution = 0.5
			w := mustWorld(cfg)
			mustBody(w, BodyDef{Size: dynamo.Vec2{200, 10}, Position: dynamo.Vec2{0, 100}})
			box := mustBody(w, BodyDef{Size: dynamo.Vec2{10, 10}, Position: dynamo.Vec2{0, 60}, InverseMass: 1, Damping: 1})

			bounced := false
			for i := 0; i < 240*12; i++ {
				Expect(w.Advance(1.0 / 240)).To(Succeed())
				if bodyOf(w, box).Velocity.Y() < -1 {
					bounced = true
				}
			}
			Expect(bounced).To(BeTrue())

			b := bodyOf(w, box)
			Expect(b.Velocity.Len()).To(BeNumerically("<", 0.5))
			Expect(b.Position.Y()).To(BeNumerically("~", 90, 0.1))
		})
	})

	Describe("a spring holding a weight", func() {
		It("settles where tension balances gravity", func() {
			cfg := DefaultConfig()
			cfg.Gravity = 10
			cfg.Collisions = false
			w := mustWorld(cfg)

			anchor := mustBody(w, BodyDef{Size: dynamo.Vec2{10, 10}})
			weight := mustBody(w, BodyDef{
				Size:        dynamo.Vec2{10, 10},
				Position:    dynamo.Vec2{0, 5},
				InverseMass: 0.5,
				Damping:     0.1,
			})
			Expect(w.AddSpring(anchor, weight, 10, 5)).To(Succeed())

			advance(w, 1.0/240, 240*20)

			// mass*g/k = 2 past the rest length.
			b := bodyOf(w, weight)
			Expect(b.Position.Y()).To(BeNumerically("~", 7, 1e-3))
			Expect(b.Position.X()).To(BeNumerically("~", 0, 1e-12))
			Expect(b.Velocity.Len()).To(BeNumerically("<", 1e-3))
		})
	})

	Describe("frame-rate independence", func() {
		build := func() (*World, body.Handle) {
			cfg := DefaultConfig()
			cfg.Gravity = 1
			cfg.Collisions = false
			cfg.DragK1 = 0.1
			w := mustWorld(cfg)
			anchor := mustBody(w, BodyDef{Size: dynamo.Vec2{1, 1}})
			h := mustBody(w, BodyDef{
				Size:        dynamo.Vec2{1, 1},
				Position:    dynamo.Vec2{0.5, 3},
				Velocity:    dynamo.Vec2{0.2, 0},
				InverseMass: 1,
				Damping:     0.5,
			})
			Expect(w.AddSpring(anchor, h, 4, 2)).To(Succeed())
			return w, h
		}

		It("reaches the same state with different fixed ticks", func() {
			coarse, hc := build()
			fine, hf := build()
			advance(coarse, 1.0/240, 480)
			advance(fine, 1.0/480, 960)

			Expect(coarse.Time()).To(BeNumerically("~", fine.Time(), 1e-9))
			bc, bf := bodyOf(coarse, hc), bodyOf(fine, hf)
			Expect(bc.Position.Sub(bf.Position).Len()).To(BeNumerically("<", 0.05))
			Expect(bc.Velocity.Sub(bf.Velocity).Len()).To(BeNumerically("<", 0.05))
		})
	})

	Describe("the reference scenario", func() {
		It("converges to the spring-gravity balance", func() {
			cfg := DefaultConfig()
			cfg.Gravity = 1
			cfg.RateHz = 480
			cfg.Collisions = false
			w := mustWorld(cfg)

			anchor := mustBody(w, BodyDef{Size: dynamo.Vec2{10, 10}, Position: dynamo.Vec2{400, 200}})
			free := mustBody(w, BodyDef{
				Size:        dynamo.Vec2{10, 10},
				Position:    dynamo.Vec2{400, 100},
				InverseMass: 1,
				Damping:     0.05,
			})
			Expect(w.AddSpring(anchor, free, 4, 2)).To(Succeed())

			clock, err := NewClock(w, cfg.FixedDt())
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 600; i++ {
				_, err := clock.Feed(1.0 / 60)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(w.Time()).To(BeNumerically("~", 10, 1.0/240))

			tr, err := w.Transform(free)
			Expect(err).NotTo(HaveOccurred())
			// rest 2 plus mass*g/k = 0.25
			Expect(tr.Position.Y()).To(BeNumerically("~", 202.25, 1e-3))
			Expect(tr.Position.X()).To(Equal(400.0))
			Expect(w.Transform(anchor)).To(Equal(dynamo.Transform{Position: dynamo.Vec2{400, 200}}))
		})
	})
})
