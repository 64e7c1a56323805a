package scenes

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

var demoScenes = []string{"home", "colliders", "conveyor_belt", "magnet", "destructible", "joints", "one_way"}

func TestEmbeddedScenesDecode(t *testing.T) {
	for _, name := range demoScenes {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadScene(name)
			if err != nil {
				t.Fatalf("load %s: %v", name, err)
			}
			if spec.Name != name {
				t.Fatalf("name = %q, want %q", spec.Name, name)
			}
			if len(spec.Entities) == 0 && len(spec.HexGrids) == 0 {
				t.Fatalf("scene %s is empty", name)
			}
			for _, e := range spec.Entities {
				if e.Name == "" {
					t.Fatalf("scene %s has an unnamed entity", name)
				}
			}
		})
	}
}

func TestOnlyCollidersDisablesGravity(t *testing.T) {
	for _, name := range demoScenes {
		spec, err := LoadScene(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		want := name != "colliders"
		if got := spec.GravityEnabled(); got != want {
			t.Fatalf("%s gravity = %v, want %v", name, got, want)
		}
	}
}

func TestEmbeddedScriptsLoad(t *testing.T) {
	for _, name := range []string{"magnet_pulse.tengo", "scripts/belt_reverse.tengo", "scenes/scripts/magnet_pulse.tengo"} {
		if _, err := LoadScript(name); err != nil {
			t.Fatalf("load script %s: %v", name, err)
		}
	}
	if _, err := LoadScript("missing.tengo"); err == nil {
		t.Fatalf("expected an error for a missing script")
	}
}

func TestPlayerAndCameraSpecs(t *testing.T) {
	player, err := LoadPlayerSpec()
	if err != nil {
		t.Fatalf("load player: %v", err)
	}
	if player.Collider.Kind != "capsule" || player.Policy != "by_normal" {
		t.Fatalf("player = %+v", player)
	}
	if player.Color == nil {
		t.Fatalf("player color missing")
	}

	camera, err := LoadCameraSpec()
	if err != nil {
		t.Fatalf("load camera: %v", err)
	}
	if camera.Target != "player" || camera.ViewWidth <= 0 || camera.ViewHeight <= 0 {
		t.Fatalf("camera = %+v", camera)
	}
}

func TestLoadSettings(t *testing.T) {
	embedded, err := LoadSettings("")
	if err != nil {
		t.Fatalf("load embedded settings: %v", err)
	}
	if embedded != DefaultSettings() {
		t.Fatalf("embedded settings = %+v, want the defaults %+v", embedded, DefaultSettings())
	}

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("start_demo: magnet\nfilter:\n  min_alignment: 0.8\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	custom, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load custom settings: %v", err)
	}
	if custom.StartDemo != "magnet" || custom.Filter.MinAlignment != 0.8 {
		t.Fatalf("custom settings = %+v", custom)
	}
	if custom.Iterations != DefaultSettings().Iterations || custom.Filter.NormalEpsilon != DefaultSettings().Filter.NormalEpsilon {
		t.Fatalf("missing keys lost their defaults: %+v", custom)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("iterations: [1, 2"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	got, err := LoadSettings(bad)
	if err == nil {
		t.Fatalf("expected a decode error")
	}
	if got != DefaultSettings() {
		t.Fatalf("settings after a bad decode = %+v, want defaults", got)
	}
}

func TestYAMLColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{`"#ff8000"`, color.NRGBA{R: 0xff, G: 0x80, A: 0xff}, false},
		{`"10203040"`, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, false},
		{`"#fff"`, color.NRGBA{}, true},
		{`"#gg0000"`, color.NRGBA{}, true},
		{`[1, 2, 3]`, color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var c YAMLColor
			err := yaml.Unmarshal([]byte(tt.in), &c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got, ok := c.Color.(color.NRGBA); !ok || got != tt.want {
				t.Fatalf("color = %#v, want %#v", c.Color, tt.want)
			}
		})
	}
}

func TestDecodeComponentSpec(t *testing.T) {
	raw := map[string]any{
		"collider": map[string]any{"kind": "circle", "radius": 3},
		"static":   true,
	}
	spec, err := DecodeComponentSpec[PhysicsBodyComponentSpec](raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec.Collider.Kind != "circle" || spec.Collider.Radius != 3 || !spec.Static {
		t.Fatalf("spec = %+v", spec)
	}

	empty, err := DecodeComponentSpec[TTLComponentSpec](nil)
	if err != nil || empty.Frames != 0 {
		t.Fatalf("nil raw = %+v, %v", empty, err)
	}
}

func TestCleanPaths(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"scene bare", cleanScenePath, "home", "home.yaml"},
		{"scene prefixed", cleanScenePath, "scenes/magnet.yaml", "magnet.yaml"},
		{"scene empty", cleanScenePath, "", ""},
		{"script bare", cleanScriptPath, "belt_reverse.tengo", "scripts/belt_reverse.tengo"},
		{"script nested", cleanScriptPath, "scenes/scripts/belt_reverse.tengo", "scripts/belt_reverse.tengo"},
		{"script empty", cleanScriptPath, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path   string
		kind   ChangeKind
		name   string
		ignore bool
	}{
		{"scenes/home.yaml", ChangeScene, "home", false},
		{"scenes/settings.yaml", ChangeSettings, "settings", false},
		{"scenes/scripts/magnet_pulse.tengo", ChangeScript, "magnet_pulse", false},
		{"scenes/notes.txt", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c, ok := classify(tt.path)
			if ok == tt.ignore {
				t.Fatalf("classify ok = %v, want %v", ok, !tt.ignore)
			}
			if tt.ignore {
				return
			}
			if c.Kind != tt.kind || c.Name != tt.name {
				t.Fatalf("change = %+v, want kind %s name %s", c, tt.kind, tt.name)
			}
		})
	}
}

func TestWatcherReportsEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "home.yaml"), []byte("name: home\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case c := <-w.Events:
		if c.Kind != ChangeScene || c.Name != "home" {
			t.Fatalf("change = %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no change reported")
	}
}
