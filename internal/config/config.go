// Package config loads the board configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"BrushBoard/internal/brush"
	"BrushBoard/internal/render"
	"BrushBoard/internal/state"
)

const (
	DefaultPort    = 8080
	DefaultService = "_brushboard._tcp"
	DefaultWidth   = 1024
	DefaultHeight  = 768
)

type Config struct {
	Canvas  CanvasConfig `yaml:"canvas"`
	Share   ShareConfig  `yaml:"share"`
	Log     LogConfig    `yaml:"log"`
	Brushes []Preset     `yaml:"brushes,omitempty"`
	// Current names the brush selected at startup. Empty keeps the
	// default brush.
	Current string `yaml:"current,omitempty"`
}

type CanvasConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Background string  `yaml:"background"`
	Scale      float32 `yaml:"scale"`
}

type ShareConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Service string `yaml:"service"`
	// Name is the mDNS instance name. Empty uses the host name.
	Name string `yaml:"name,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Preset describes a brush registered at startup.
type Preset struct {
	Name string     `yaml:"name"`
	Kind brush.Kind `yaml:"kind"`
	// Texture is an image file, relative to the config file. Empty uses
	// the round dot.
	Texture          string  `yaml:"texture,omitempty"`
	Size             float32 `yaml:"size,omitempty"`
	Step             float32 `yaml:"step,omitempty"`
	Color            string  `yaml:"color,omitempty"`
	Opacity          float32 `yaml:"opacity,omitempty"`
	ForceSensitivity float32 `yaml:"forceSensitivity,omitempty"`
	ForceOnTap       float32 `yaml:"forceOnTap,omitempty"`
	Rotation         string  `yaml:"rotation,omitempty"`
	Angle            float32 `yaml:"angle,omitempty"`
	ScaleWithCanvas  bool    `yaml:"scaleWithCanvas,omitempty"`

	CoreProportion float32 `yaml:"coreProportion,omitempty"`
	CoreColor      string  `yaml:"coreColor,omitempty"`
}

// Default returns the configuration used without a config file.
func Default() Config {
	c := Config{Share: ShareConfig{Enabled: true}}
	c.normalize()
	return c
}

func (c *Config) normalize() {
	if c.Canvas.Width <= 0 {
		c.Canvas.Width = DefaultWidth
	}
	if c.Canvas.Height <= 0 {
		c.Canvas.Height = DefaultHeight
	}
	if c.Canvas.Background == "" {
		c.Canvas.Background = "#ffffff"
	}
	if c.Canvas.Scale <= 0 {
		c.Canvas.Scale = 1
	}
	if c.Share.Port == 0 {
		c.Share.Port = DefaultPort
	}
	if c.Share.Service == "" {
		c.Share.Service = DefaultService
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	for i := range c.Brushes {
		if c.Brushes[i].Kind == "" {
			c.Brushes[i].Kind = brush.KindStamp
		}
	}
}

// Load reads the configuration at path. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	c := Config{Share: ShareConfig{Enabled: true}}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return c, nil
}

// Validate checks colors, log level and brush presets.
func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseColor(c.Canvas.Background); err != nil {
		errs = append(errs, fmt.Errorf("canvas background: %w", err))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]bool)
	for _, p := range c.Brushes {
		if p.Name == "" {
			errs = append(errs, errors.New("brush without name"))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("brush %q defined twice", p.Name))
		}
		seen[p.Name] = true
		if err := p.validate(); err != nil {
			errs = append(errs, fmt.Errorf("brush %q: %w", p.Name, err))
		}
	}
	if c.Current != "" && c.Current != brush.DefaultName && !seen[c.Current] {
		errs = append(errs, fmt.Errorf("current brush %q is not defined", c.Current))
	}
	return errors.Join(errs...)
}

func (p Preset) validate() error {
	if _, err := brush.New(p.Kind, p.Name, ""); err != nil {
		return err
	}
	if p.CoreProportion < 0 || p.CoreProportion > 1 {
		return fmt.Errorf("core proportion %g outside [0, 1]", p.CoreProportion)
	}
	for _, s := range []string{p.Color, p.CoreColor} {
		if s == "" {
			continue
		}
		if _, err := ParseColor(s); err != nil {
			return err
		}
	}
	_, err := parseRotation(p.Rotation)
	return err
}

// LogLevel parses the configured level name.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// BackgroundColor returns the parsed canvas background, white if invalid.
func (c *Config) BackgroundColor() color.NRGBA {
	col, err := ParseColor(c.Canvas.Background)
	if err != nil {
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return col
}

// Apply registers every preset in reg, loading textures into tex. Texture
// paths are relative to dir. The current brush is selected last.
func (c *Config) Apply(reg *brush.Registry, tex *render.Textures, dir string) error {
	for _, p := range c.Brushes {
		textureID := ""
		if p.Texture != "" {
			path := p.Texture
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			id, err := tex.LoadFile(p.Name, path)
			if err != nil {
				return fmt.Errorf("brush %q: %w", p.Name, err)
			}
			textureID = id
		}
		b, err := p.Build(textureID)
		if err != nil {
			return err
		}
		if err := reg.Register(b); err != nil {
			return err
		}
	}
	if c.Current != "" {
		return reg.Use(c.Current)
	}
	return nil
}

// Build creates the brush a preset describes.
func (p Preset) Build(textureID string) (brush.Brush, error) {
	b, err := brush.New(p.Kind, p.Name, textureID)
	if err != nil {
		return nil, err
	}
	cfg := b.Config()
	if p.Size > 0 {
		cfg.PointSize = p.Size
	}
	if p.Step > 0 {
		cfg.PointStep = p.Step
	}
	if p.Color != "" {
		col, err := ParseColor(p.Color)
		if err != nil {
			return nil, fmt.Errorf("brush %q: %w", p.Name, err)
		}
		cfg.Color = col
	}
	if p.Opacity > 0 {
		cfg.Opacity = p.Opacity
	}
	cfg.ForceSensitivity = p.ForceSensitivity
	if p.ForceOnTap > 0 {
		cfg.ForceOnTap = p.ForceOnTap
	}
	kind, err := parseRotation(p.Rotation)
	if err != nil {
		return nil, fmt.Errorf("brush %q: %w", p.Name, err)
	}
	cfg.Rotation = state.Rotation{Kind: kind, Angle: p.Angle}
	cfg.ScaleWithCanvas = p.ScaleWithCanvas

	if g, ok := b.(*brush.Glowing); ok {
		if p.CoreProportion > 0 {
			g.CoreProportion = p.CoreProportion
		}
		if p.CoreColor != "" {
			col, err := ParseColor(p.CoreColor)
			if err != nil {
				return nil, fmt.Errorf("brush %q: %w", p.Name, err)
			}
			g.CoreColor = col
		}
	}
	return b, nil
}

func parseRotation(s string) (state.RotationKind, error) {
	switch s {
	case "", "fixed":
		return state.RotationFixed, nil
	case "random":
		return state.RotationRandom, nil
	case "ahead":
		return state.RotationAhead, nil
	}
	return 0, fmt.Errorf("unknown rotation %q", s)
}

// ParseColor parses a "#rgb" or "#rrggbb" hex color as an opaque color.
func ParseColor(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
