package sim_test

import (
	"errors"
	"fmt"

	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/sim"
)

func ExampleWorld_Advance() {
	w, err := sim.New(sim.DefaultConfig())
	if err != nil {
		fmt.Println(err)
		return
	}
	if _, err := w.CreateBody(sim.BodyDef{Size: dynamo.Vec2{800, 20}, Position: dynamo.Vec2{400, 590}}); err != nil {
		fmt.Println(err)
		return
	}
	box, err := w.CreateBody(sim.BodyDef{Size: dynamo.Vec2{20, 20}, Position: dynamo.Vec2{400, 100}, InverseMass: 1})
	if err != nil {
		fmt.Println(err)
		return
	}

	for i := 0; i < 2; i++ {
		if err := w.Advance(1.0 / 60); err != nil {
			fmt.Println(err)
			return
		}
	}
	tr, _ := w.Transform(box)
	fmt.Printf("y=%.3f\n", tr.Position.Y())

	if err := w.Advance(0); errors.Is(err, dynamo.ErrNonPositiveDt) {
		fmt.Println("rejected dt=0")
	}
	// Output:
	// y=100.003
	// rejected dt=0
}
