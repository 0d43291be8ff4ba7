// Package config loads voxray settings from YAML.
//
// Load starts from Defaults, overlays the file, checks the document against
// the embedded JSON schema and then runs Validate.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"voxray/engine/camera"
	"voxray/engine/world"
)

var ErrInvalid = errors.New("config: invalid")

//go:embed schema.json
var schemaJSON string

type Config struct {
	World  World  `yaml:"world"`
	Render Render `yaml:"render"`
	Camera Camera `yaml:"camera"`
	Window Window `yaml:"window"`
}

type World struct {
	// Seed 0 picks a random seed at startup.
	Seed int64 `yaml:"seed"`
	// ChunkRadius generates chunk coordinates [-r, r] on every axis.
	ChunkRadius    int     `yaml:"chunk_radius"`
	NoiseScale     float64 `yaml:"noise_scale"`
	Octaves        int     `yaml:"octaves"`
	Lacunarity     float64 `yaml:"lacunarity"`
	Persistence    float64 `yaml:"persistence"`
	DistanceRadius int     `yaml:"distance_radius"`
	// Workers 0 uses every CPU.
	Workers int `yaml:"workers"`
}

type Render struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Workers    int     `yaml:"workers"`
	FOVDegrees float64 `yaml:"fov_degrees"`
	MaxSteps   int     `yaml:"max_steps"`
	// Rotation is "full" (pitch, yaw, roll) or "pitch-yaw".
	Rotation   string `yaml:"rotation"`
	SkipEmpty  bool   `yaml:"skip_empty"`
	HUD        bool   `yaml:"hud"`
	Background string `yaml:"background"`
}

type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

type Camera struct {
	Position Vec3 `yaml:"position"`
	// Orientation is pitch, yaw, roll in radians.
	Orientation Vec3    `yaml:"orientation"`
	MoveSpeed   float32 `yaml:"move_speed"`
	RotateSpeed float32 `yaml:"rotate_speed"`
}

type Window struct {
	Title string `yaml:"title"`
	Scale int    `yaml:"scale"`
}

func Defaults() Config {
	return Config{
		World: World{
			ChunkRadius:    4,
			NoiseScale:     world.DefaultScale,
			Octaves:        1,
			Lacunarity:     2,
			Persistence:    0.5,
			DistanceRadius: 4,
		},
		Render: Render{
			Width:      800,
			Height:     600,
			Workers:    8,
			FOVDegrees: 60,
			MaxSteps:   256,
			Rotation:   "full",
			SkipEmpty:  true,
			HUD:        true,
			Background: "#000000",
		},
		Camera: Camera{
			MoveSpeed:   1,
			RotateSpeed: 0.1,
		},
		Window: Window{
			Title: "voxray",
			Scale: 1,
		},
	}
}

// Load reads a YAML file over Defaults. An empty path returns Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(raw)
}

// Parse decodes a YAML document over Defaults.
func Parse(raw []byte) (Config, error) {
	cfg := Defaults()
	if err := checkSchema(raw); err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config.yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var schema = jsonschema.MustCompileString("schema.json", schemaJSON)

// checkSchema validates the raw document. The YAML tree goes through JSON so
// the validator sees JSON types.
func checkSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("config.yaml: %w", err)
	}
	if doc == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config.yaml: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("config.yaml: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Validate checks the cross-field rules the schema cannot express.
func (c Config) Validate() error {
	var errs []string
	if c.World.ChunkRadius < 0 {
		errs = append(errs, "world.chunk_radius must be >= 0")
	}
	if c.World.NoiseScale <= 0 {
		errs = append(errs, "world.noise_scale must be > 0")
	}
	if c.World.DistanceRadius < 1 || c.World.DistanceRadius > world.MaxRadius {
		errs = append(errs, fmt.Sprintf("world.distance_radius must be in [1,%d]", world.MaxRadius))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, "render.width and render.height must be > 0")
	}
	if c.Render.FOVDegrees <= 0 || c.Render.FOVDegrees >= 180 {
		errs = append(errs, "render.fov_degrees must be in (0,180)")
	}
	if c.Render.MaxSteps < 1 {
		errs = append(errs, "render.max_steps must be >= 1")
	}
	if _, err := camera.ParseRotation(c.Render.Rotation); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := c.Render.BackgroundColor(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Window.Scale < 1 {
		errs = append(errs, "window.scale must be >= 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// BackgroundColor parses Background as #rrggbb.
func (r Render) BackgroundColor() (world.Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(r.Background), "#")
	if len(s) != 6 {
		return world.Color{}, fmt.Errorf("render.background %q is not #rrggbb", r.Background)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return world.Color{}, fmt.Errorf("render.background %q is not #rrggbb", r.Background)
	}
	return world.RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}
