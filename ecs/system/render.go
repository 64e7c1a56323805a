package system

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/oneway"
	"golang.org/x/image/colornames"
)

// RenderSystem draws the physics wireframe and, in debug mode, a HUD with
// the demo name, FPS and one-way filter state.
type RenderSystem struct {
	physics *PhysicsSystem
	demos   *DemoStateSystem
	debug   bool
}

func NewRenderSystem(physics *PhysicsSystem, demos *DemoStateSystem, debug bool) *RenderSystem {
	return &RenderSystem{physics: physics, demos: demos, debug: debug}
}

func (r *RenderSystem) SetDebug(debug bool) {
	r.debug = debug
}

func (r *RenderSystem) Debug() bool {
	return r.debug
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	screen.Fill(colornames.Black)
	DrawPhysicsDebug(r.physics, w, screen)

	demo := Demo("")
	if r.demos != nil {
		demo = r.demos.Current()
	}
	header := fmt.Sprintf("Demo: %s  (space: next, S: drop through)", demo)
	if !r.debug {
		ebitenutil.DebugPrintAt(screen, header, 10, 10)
		return
	}
	text := fmt.Sprintf("%s\nFPS: %.0f  TPS: %.0f\n%s", header, ebiten.ActualFPS(), ebiten.ActualTPS(), Diagnostics(w, r.physics))
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

// Diagnostics describes the one-way filter's last step and every
// non-empty pass set, one platform per line.
func Diagnostics(w *ecs.World, physics *PhysicsSystem) string {
	var b strings.Builder
	if physics != nil && physics.Filter() != nil {
		st := physics.Filter().Stats()
		fmt.Fprintf(&b, "Filter: pairs=%d kept=%d discarded=%d expired=%d swept=%d\n",
			st.Pairs, st.Kept, st.Discarded, st.Expired, st.Swept)
		fmt.Fprintf(&b, "Gravity: %v\n", physics.GravityEnabled())
	}
	if w == nil {
		return b.String()
	}

	type platformLine struct {
		name    string
		passing []string
	}
	var lines []platformLine
	ecs.ForEach(w, component.OneWayPlatformComponent.Kind(), func(e ecs.Entity, p *component.OneWayPlatform) {
		if p.Passing.Len() == 0 {
			return
		}
		line := platformLine{name: entityLabel(w, e)}
		for _, other := range passSetEntities(&p.Passing) {
			line.passing = append(line.passing, entityLabel(w, other))
		}
		sort.Strings(line.passing)
		lines = append(lines, line)
	})
	sort.Slice(lines, func(i, j int) bool { return lines[i].name < lines[j].name })
	for _, l := range lines {
		fmt.Fprintf(&b, "Passing %s: %s\n", l.name, strings.Join(l.passing, ", "))
	}

	ecs.ForEach(w, component.PasserComponent.Kind(), func(e ecs.Entity, p *component.Passer) {
		if p.Policy != oneway.ByNormal {
			fmt.Fprintf(&b, "Policy %s: %s\n", entityLabel(w, e), p.Policy)
		}
	})
	return b.String()
}

func entityLabel(w *ecs.World, e ecs.Entity) string {
	if n, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok && n.Value != "" {
		return n.Value
	}
	return e.String()
}
