package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/akmonengine/tumble"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a cube falling on the floor, or the tilted default scene
func SetupScene(tilted bool) *tumble.Simulation {
	config := tumble.DefaultSceneConfig()
	config.SleepTime = 0.5
	if !tilted {
		config.Gravity = mgl64.Vec3{0, 0, -9.8}
		config.RotationAngle = 0
	}

	simulation := tumble.NewSimulation(config, nil, log.New(os.Stderr, "", 0))

	simulation.Events.Subscribe(tumble.CONTACT_ENTER, func(event tumble.Event) {
		e := event.(tumble.ContactEnterEvent)
		fmt.Printf("💥 contact %v: depth=%.4f corners=%d\n", e.Face, e.Contact.Depth, e.Contact.Corners)
	})
	simulation.Events.Subscribe(tumble.CONTACT_EXIT, func(event tumble.Event) {
		fmt.Printf("↗️  left %v\n", event.(tumble.ContactExitEvent).Face)
	})
	simulation.Events.Subscribe(tumble.ON_SLEEP, func(event tumble.Event) {
		fmt.Printf("😴 cube is sleeping\n")
	})

	return simulation
}

func main() {
	tilted := flag.Bool("tilted", false, "tilted cube under diagonal gravity")
	ticks := flag.Int("ticks", 600, "number of ticks at 60 TPS")
	flag.Parse()

	simulation := SetupScene(*tilted)
	if err := simulation.Initialize(); err != nil {
		log.Fatal(err)
	}

	const dt = 1.0 / 60.0
	for tick := range *ticks {
		simulation.Step(dt)

		if tick%60 == 0 {
			body := simulation.Body()
			fmt.Printf("t=%5.2fs position=%v velocity=%v angular=%v\n",
				float64(tick+1)*dt, simulation.Cube().Position(), body.Velocity, body.AngularVelocity)
		}
	}

	fmt.Printf("final position: %v\n", simulation.Cube().Position())
	fmt.Printf("final rotation: %v\n", simulation.Cube().Rotation())
}
