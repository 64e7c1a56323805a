package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/physics-sandbox/common"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/entity"
	"github.com/milk9111/physics-sandbox/ecs/system"
	"github.com/milk9111/physics-sandbox/scenes"
)

// sandbox is the simulation without a window: the same systems the game
// runs, fed by a terminal or by nothing at all.
type sandbox struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	physics   *system.PhysicsSystem
	demos     *system.DemoStateSystem
}

func newSandbox(demo system.Demo, settings scenes.Settings, input system.InputSource) (*sandbox, error) {
	world := ecs.NewWorld()
	if _, err := entity.NewPlayer(world); err != nil {
		return nil, err
	}
	if _, err := entity.NewCamera(world); err != nil {
		return nil, err
	}

	physics := system.NewPhysicsSystem(system.PhysicsConfigFromSettings(settings))
	demos := system.NewDemoStateSystem(entity.NewSceneLoader(), physics, demo)
	return &sandbox{
		world:   world,
		physics: physics,
		demos:   demos,
		scheduler: ecs.NewScheduler(
			system.NewInputSystem(input),
			system.NewPassThroughSystem(),
			system.NewPlayerControllerSystem(false),
			system.NewScriptSystem(),
			demos,
			system.NewConveyorSystem(),
			system.NewMagnetSystem(),
			system.NewBlockSpawnerSystem(),
			physics,
			system.NewDestructibleSystem(false),
			system.NewTTLSystem(),
			system.NewCameraSystem(),
		),
	}, nil
}

func (s *sandbox) step() error {
	s.scheduler.Update(s.world)
	if err := s.demos.Err; err != nil {
		s.demos.Err = nil
		return err
	}
	return nil
}

func main() {
	demoName := flag.String("demo", "", "demo to start in")
	settingsPath := flag.String("settings", "", "settings file (defaults to scenes/settings.yaml)")
	headless := flag.Int("headless", 0, "run this many frames without a terminal and print diagnostics")
	flag.Parse()

	settings, err := scenes.LoadSettings(*settingsPath)
	if err != nil {
		log.Printf("Termview: %v; using defaults", err)
	}
	if *demoName == "" {
		*demoName = settings.StartDemo
	}
	demo, err := system.ParseDemo(*demoName)
	if err != nil {
		log.Fatal(err)
	}

	if *headless > 0 {
		if err := runHeadless(demo, settings, *headless); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := runTerminal(demo, settings); err != nil {
		log.Fatal(err)
	}
}

func runHeadless(demo system.Demo, settings scenes.Settings, frames int) error {
	sb, err := newSandbox(demo, settings, &termInput{})
	if err != nil {
		return err
	}
	for i := 0; i < frames; i++ {
		if err := sb.step(); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stdout, "Demo: %s after %d frames\n%s", sb.demos.Current(), frames, system.Diagnostics(sb.world, sb.physics))
	return nil
}

func runTerminal(demo system.Demo, settings scenes.Settings) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	input := &termInput{}
	sb, err := newSandbox(demo, settings, input)
	if err != nil {
		return err
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Duration(common.TimeStep * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if quitKey(ev) {
					return nil
				}
				if ev.Key() == tcell.KeyRune && ev.Rune() == 'r' {
					sb.world.Events().Push(ecs.Event{Type: ecs.EventReloadDemo})
					continue
				}
				input.handleKey(ev)
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			if err := sb.step(); err != nil {
				log.Printf("Termview: %v", err)
			}
			draw(screen, sb)
		}
	}
}

func quitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}
