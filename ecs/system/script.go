package system

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/physics-sandbox/common"
	"github.com/milk9111/physics-sandbox/ecs"
	"github.com/milk9111/physics-sandbox/ecs/component"
	"github.com/milk9111/physics-sandbox/scenes"
)

const scriptDispatch = `
update(__engine, __params)
`

type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
}

// ScriptSystem runs each entity's tengo script once per frame. A script
// defines update(engine, params); params holds the entity's current Script
// parameters and engine.set writes them back.
type ScriptSystem struct {
	load   func(path string) ([]byte, error)
	cache  map[ecs.Entity]*scriptRuntime
	failed map[ecs.Entity]string
}

func NewScriptSystem() *ScriptSystem {
	return NewScriptSystemWithLoader(scenes.LoadScript)
}

// NewScriptSystemWithLoader reads script sources through load.
func NewScriptSystemWithLoader(load func(path string) ([]byte, error)) *ScriptSystem {
	return &ScriptSystem{
		load:   load,
		cache:  map[ecs.Entity]*scriptRuntime{},
		failed: map[ecs.Entity]string{},
	}
}

// Invalidate drops compiled scripts whose file name, without extension,
// is name, so they are reloaded on the next update.
func (s *ScriptSystem) Invalidate(name string) {
	for e, rt := range s.cache {
		if scriptName(rt.path) == name {
			delete(s.cache, e)
		}
	}
	for e, path := range s.failed {
		if scriptName(path) == name {
			delete(s.failed, e)
		}
	}
}

func scriptName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *ScriptSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	for e := range s.cache {
		if !ecs.IsAlive(w, e) {
			delete(s.cache, e)
		}
	}
	for e := range s.failed {
		if !ecs.IsAlive(w, e) {
			delete(s.failed, e)
		}
	}

	ecs.ForEach(w, component.ScriptComponent.Kind(), func(e ecs.Entity, script *component.Script) {
		if strings.TrimSpace(script.Path) == "" || s.failed[e] == script.Path {
			return
		}
		rt, err := s.runtime(e, script.Path)
		if err != nil {
			log.Printf("Script: entity=%v load %s: %v", e, script.Path, err)
			s.failed[e] = script.Path
			return
		}
		if script.Params == nil {
			script.Params = map[string]float64{}
		}
		if err := rt.run(buildScriptEngine(w, e, script), scriptParams(script)); err != nil {
			log.Printf("Script: entity=%v update %s: %v", e, script.Path, err)
			s.failed[e] = script.Path
		}
	})
}

func (s *ScriptSystem) runtime(e ecs.Entity, path string) (*scriptRuntime, error) {
	if rt, ok := s.cache[e]; ok && rt.path == path {
		return rt, nil
	}

	src, err := s.load(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__params", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &scriptRuntime{path: path, compiled: compiled}
	s.cache[e] = rt
	return rt, nil
}

func (rt *scriptRuntime) run(engine *tengo.ImmutableMap, params *tengo.ImmutableMap) error {
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__params", params); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func scriptParams(script *component.Script) *tengo.ImmutableMap {
	values := make(map[string]tengo.Object, len(script.Params))
	for k, v := range script.Params {
		values[k] = &tengo.Float{Value: v}
	}
	return &tengo.ImmutableMap{Value: values}
}

func buildScriptEngine(w *ecs.World, e ecs.Entity, script *component.Script) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["frame"] = &tengo.UserFunction{Name: "frame", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(w.Frame())}, nil
	}}

	values["time"] = &tengo.UserFunction{Name: "time", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: float64(w.Frame()) * common.TimeStep}, nil
	}}

	values["set"] = &tengo.UserFunction{Name: "set", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		v, ok := objectAsFloat(args[1])
		if name == "" || !ok {
			return tengo.FalseValue, nil
		}
		script.Params[name] = v
		return tengo.TrueValue, nil
	}}

	values["get"] = &tengo.UserFunction{Name: "get", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		v, ok := script.Params[objectAsString(args[0])]
		if !ok {
			if len(args) > 1 {
				return args[1], nil
			}
			return tengo.UndefinedValue, nil
		}
		return &tengo.Float{Value: v}, nil
	}}

	values["get_position"] = &tengo.UserFunction{Name: "get_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return positionObject(w, e), nil
	}}

	values["get_player_position"] = &tengo.UserFunction{Name: "get_player_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		player, _ := ecs.First(w, component.PlayerTagComponent.Kind())
		return positionObject(w, player), nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		log.Printf("Script: %s: %s", script.Path, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func positionObject(w *ecs.World, e ecs.Entity) tengo.Object {
	x, y := 0.0, 0.0
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		x, y = t.X, t.Y
	}
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: x}, &tengo.Float{Value: y}}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectAsFloat(obj tengo.Object) (float64, bool) {
	switch v := objectToAny(obj).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
