package main

import (
	"fmt"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/physics-sandbox/common"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/entity"
	"github.com/milk9111/physics-sandbox/ecs/system"
	"github.com/milk9111/physics-sandbox/scenes"
	"golang.design/x/clipboard"
)

type gameOptions struct {
	demo         string
	debug        bool
	watch        bool
	settingsPath string
}

type Game struct {
	world     *ecs.World
	scheduler *ecs.Scheduler

	physics *system.PhysicsSystem
	demos   *system.DemoStateSystem
	scripts *system.ScriptSystem
	render  *system.RenderSystem

	pauseUI *ebitenui.UI
	paused  bool

	settingsPath string
	watcher      *scenes.Watcher
	clipboardOK  bool
}

func NewGame(opts gameOptions) (*Game, error) {
	settings, err := scenes.LoadSettings(opts.settingsPath)
	if err != nil {
		log.Printf("Game: %v; using defaults", err)
	}

	start := opts.demo
	if start == "" {
		start = settings.StartDemo
	}
	demo, err := system.ParseDemo(start)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	if _, err := entity.NewPlayer(world); err != nil {
		return nil, err
	}
	if _, err := entity.NewCamera(world); err != nil {
		return nil, err
	}

	physics := system.NewPhysicsSystem(system.PhysicsConfigFromSettings(settings))
	demos := system.NewDemoStateSystem(entity.NewSceneLoader(), physics, demo)
	scripts := system.NewScriptSystem()

	g := &Game{
		world:   world,
		physics: physics,
		demos:   demos,
		scripts: scripts,
		render:  system.NewRenderSystem(physics, demos, opts.debug),

		settingsPath: opts.settingsPath,
	}
	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(nil),
		system.NewPassThroughSystem(),
		system.NewPlayerControllerSystem(opts.debug),
		scripts,
		demos,
		system.NewConveyorSystem(),
		system.NewMagnetSystem(),
		system.NewBlockSpawnerSystem(),
		physics,
		system.NewDestructibleSystem(opts.debug),
		system.NewTTLSystem(),
		system.NewCameraSystem(),
	)
	g.pauseUI = NewPauseUI(g)

	if opts.watch {
		w, err := scenes.NewWatcher()
		if err != nil {
			log.Printf("Game: scene watcher disabled: %v", err)
		} else {
			g.watcher = w
		}
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("Game: clipboard unavailable: %v", err)
	} else {
		g.clipboardOK = true
	}

	return g, nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.render.SetDebug(!g.render.Debug())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.copyDiagnostics()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.world.Events().Push(ecs.Event{Type: ecs.EventReloadDemo})
	}

	g.applyChanges()
	g.scheduler.Update(g.world)

	if err := g.demos.Err; err != nil {
		log.Printf("Game: %v", err)
		g.demos.Err = nil
	}
	return nil
}

// applyChanges turns edits reported by the watcher into reloads.
func (g *Game) applyChanges() {
	if g.watcher == nil {
		return
	}
	for _, c := range g.watcher.Poll() {
		log.Printf("Game: %s changed: %s", c.Kind, c.Path)
		switch c.Kind {
		case scenes.ChangeScript:
			g.scripts.Invalidate(c.Name)
		case scenes.ChangeSettings:
			settings, err := scenes.LoadSettings(g.settingsPath)
			if err != nil {
				log.Printf("Game: reload settings: %v", err)
				continue
			}
			g.physics.SetConfig(system.PhysicsConfigFromSettings(settings))
		case scenes.ChangeScene:
			if c.Name == string(g.demos.Current()) {
				g.world.Events().Push(ecs.Event{Type: ecs.EventReloadDemo})
			}
		}
	}
}

func (g *Game) copyDiagnostics() {
	text := fmt.Sprintf("Demo: %s\n%s", g.demos.Current(), system.Diagnostics(g.world, g.physics))
	if !g.clipboardOK {
		log.Print(text)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	log.Printf("Game: diagnostics copied")
}

func (g *Game) nextDemo() {
	g.world.Events().Push(ecs.Event{Type: ecs.EventNextDemo})
	g.paused = false
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.world, screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.ScreenWidth, common.ScreenHeight
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}
