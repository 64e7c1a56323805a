package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/physics-sandbox/common"
)

func main() {
	demo := flag.String("demo", "", "demo to start in (home, colliders, conveyor_belt, magnet, destructible, joints, one_way)")
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	watch := flag.Bool("watch", false, "reload scenes, scripts and settings when they change on disk")
	settingsPath := flag.String("settings", "", "settings file (defaults to scenes/settings.yaml)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.ScreenWidth, common.ScreenHeight)
	ebiten.SetWindowTitle("physics sandbox")

	game, err := NewGame(gameOptions{
		demo:         *demo,
		debug:        *debug,
		watch:        *watch,
		settingsPath: *settingsPath,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
