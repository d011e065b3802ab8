// Package dynamo provides the shared primitives of the 2D rigid-body core.
//
// The package defines the vocabulary every other package speaks:
//
//   - [Vec2]: 2D vector (an alias of mgl64.Vec2)
//   - [BodyState]: read-only snapshot of one body, used by renderers,
//     metrics and storage
//   - [Metric] and [Observer]: hooks fed once per tick by a run
//   - sentinel errors and [StepError]
//
// # Example
//
//	w, err := sim.New(sim.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	if _, err := w.CreateBody(sim.BodyDef{Size: dynamo.Vec2{800, 20}, Position: dynamo.Vec2{400, 590}}); err != nil {
//		return err
//	}
//	box, err := w.CreateBody(sim.BodyDef{Size: dynamo.Vec2{20, 20}, Position: dynamo.Vec2{400, 100}, InverseMass: 1})
//	if err != nil {
//		return err
//	}
//	if err := w.Advance(1.0 / 60); err != nil {
//		var se *dynamo.StepError
//		if errors.As(err, &se) {
//			log.Printf("tick %d failed: %v", se.Tick, se.Wrapped)
//		}
//		return err
//	}
//	tr, _ := w.Transform(box)
//
// # Thread Safety
//
// Nothing here is safe for concurrent mutation. A world is stepped by one
// goroutine; independent worlds may run in parallel (see sim.Ensemble).
package dynamo
