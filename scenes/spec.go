package scenes

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/milk9111/physics-sandbox/common"
	"gopkg.in/yaml.v3"
)

const (
	SettingsName = "settings"
	PlayerName   = "player"
	CameraName   = "camera"
)

var ErrUnknownComponent = errors.New("scenes: unknown component")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("scenes: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("scenes: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// DecodeComponentSpec re-decodes one loosely typed component block into its
// concrete spec type.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// SceneSpec is one demo: its entities, the joints between them and any
// generated structures.
type SceneSpec struct {
	Name string `yaml:"name"`
	// Gravity defaults to on; the colliders demo turns it off.
	Gravity  *bool         `yaml:"gravity"`
	Entities []EntitySpec  `yaml:"entities"`
	Joints   []JointSpec   `yaml:"joints"`
	HexGrids []HexGridSpec `yaml:"hex_grids"`
}

func (s SceneSpec) GravityEnabled() bool {
	return s.Gravity == nil || *s.Gravity
}

func LoadScene(name string) (SceneSpec, error) {
	return LoadSpec[SceneSpec](name)
}

type EntitySpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type ColliderSpec struct {
	Kind     string       `yaml:"kind"`
	Width    float64      `yaml:"width"`
	Height   float64      `yaml:"height"`
	Radius   float64      `yaml:"radius"`
	Sides    int          `yaml:"sides"`
	Vertices []VectorSpec `yaml:"vertices"`
	OffsetX  float64      `yaml:"offset_x"`
	OffsetY  float64      `yaml:"offset_y"`
}

type PhysicsBodyComponentSpec struct {
	Collider      ColliderSpec   `yaml:"collider"`
	Children      []ColliderSpec `yaml:"children"`
	Mass          float64        `yaml:"mass"`
	Friction      float64        `yaml:"friction"`
	Elasticity    float64        `yaml:"elasticity"`
	Static        bool           `yaml:"static"`
	FixedRotation bool           `yaml:"fixed_rotation"`
	Sensor        bool           `yaml:"sensor"`
	GravityScale  *float64       `yaml:"gravity_scale"`
	// Impulse is applied once on the first physics step.
	Impulse       VectorSpec     `yaml:"impulse"`
}

type OneWayComponentSpec struct {
	Up VectorSpec `yaml:"up"`
}

type PasserComponentSpec struct {
	Policy string `yaml:"policy"`
}

type ConveyorComponentSpec struct {
	Vector VectorSpec `yaml:"vector"`
}

type SpawnerComponentSpec struct {
	IntervalFrames int          `yaml:"interval_frames"`
	BlockTTL       int          `yaml:"block_ttl"`
	X              float64      `yaml:"x"`
	Y              float64      `yaml:"y"`
	Block          ColliderSpec `yaml:"block"`
	Elasticity     float64      `yaml:"elasticity"`
}

type MagnetComponentSpec struct {
	Strength float64 `yaml:"strength"`
	Radius   float64 `yaml:"radius"`
}

type DestructibleComponentSpec struct {
	ImpulseThreshold float64 `yaml:"impulse_threshold"`
}

type ScriptComponentSpec struct {
	Path   string             `yaml:"path"`
	Params map[string]float64 `yaml:"params"`
}

type TTLComponentSpec struct {
	Frames int `yaml:"frames"`
}

// JointSpec connects two named entities. An empty name means the world.
type JointSpec struct {
	Kind         string     `yaml:"kind"`
	A            string     `yaml:"a"`
	B            string     `yaml:"b"`
	AnchorA      VectorSpec `yaml:"anchor_a"`
	AnchorB      VectorSpec `yaml:"anchor_b"`
	FreeAxis     VectorSpec `yaml:"free_axis"`
	Min          float64    `yaml:"min"`
	Max          float64    `yaml:"max"`
	AngleLimited bool       `yaml:"angle_limited"`
	MinAngle     float64    `yaml:"min_angle"`
	MaxAngle     float64    `yaml:"max_angle"`
	MaxForce     float64    `yaml:"max_force"`
	BreakImpulse float64    `yaml:"break_impulse"`
}

// HexGridSpec generates a pointy-top hexagon grid joined by prismatic
// joints. Hexes on every StaticEvery-th row and column, and on the last
// row and column, are static.
type HexGridSpec struct {
	Name             string     `yaml:"name"`
	Rows             int        `yaml:"rows"`
	Cols             int        `yaml:"cols"`
	Radius           float64    `yaml:"radius"`
	Gap              float64    `yaml:"gap"`
	X                float64    `yaml:"x"`
	Y                float64    `yaml:"y"`
	StaticEvery      int        `yaml:"static_every"`
	Limit            float64    `yaml:"limit"`
	ImpulseThreshold float64    `yaml:"impulse_threshold"`
	BreakImpulse     float64    `yaml:"break_impulse"`
	Color            *YAMLColor `yaml:"color"`
	StaticColor      *YAMLColor `yaml:"static_color"`
}

type PlayerSpec struct {
	Name         string                 `yaml:"name"`
	Transform    TransformComponentSpec `yaml:"transform"`
	Collider     ColliderSpec           `yaml:"collider"`
	Mass         float64                `yaml:"mass"`
	Friction     float64                `yaml:"friction"`
	ImpulseScale float64                `yaml:"impulse_scale"`
	GravityScale float64                `yaml:"gravity_scale"`
	Policy       string                 `yaml:"policy"`
	Color        *YAMLColor             `yaml:"color"`
}

func LoadPlayerSpec() (PlayerSpec, error) {
	return LoadSpec[PlayerSpec](PlayerName)
}

type CameraSpec struct {
	Name       string  `yaml:"name"`
	Target     string  `yaml:"target"`
	Smoothness float64 `yaml:"smoothness"`
	ViewWidth  float64 `yaml:"view_width"`
	ViewHeight float64 `yaml:"view_height"`
}

func LoadCameraSpec() (CameraSpec, error) {
	return LoadSpec[CameraSpec](CameraName)
}

// Settings are the tunables read from settings.yaml. Missing keys keep
// their defaults.
type Settings struct {
	StartDemo     string         `yaml:"start_demo"`
	GravityFactor float64        `yaml:"gravity_factor"`
	Iterations    int            `yaml:"iterations"`
	ImpulseScale  float64        `yaml:"impulse_scale"`
	Filter        FilterSettings `yaml:"filter"`
}

type FilterSettings struct {
	MinAlignment  float64 `yaml:"min_alignment"`
	NormalEpsilon float64 `yaml:"normal_epsilon"`
}

func DefaultSettings() Settings {
	return Settings{
		StartDemo:     "home",
		GravityFactor: common.GravityFactor,
		Iterations:    common.Iterations,
		ImpulseScale:  common.ImpulseScale,
		Filter: FilterSettings{
			MinAlignment:  0.5,
			NormalEpsilon: 1e-6,
		},
	}
}

// LoadSettings reads name over the defaults. name is a file path or the
// name of a file under Dir; empty means settings.yaml.
func LoadSettings(name string) (Settings, error) {
	if name == "" {
		name = SettingsName
	}
	settings := DefaultSettings()
	data, err := os.ReadFile(name)
	if err != nil {
		data, err = Load(name)
	}
	if err != nil {
		return settings, fmt.Errorf("scenes: load %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("scenes: unmarshal %s: %w", name, err)
	}
	return settings, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
