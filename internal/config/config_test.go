package config

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BrushBoard/internal/brush"
	"BrushBoard/internal/render"
	"BrushBoard/internal/state"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultWidth, c.Canvas.Width)
	assert.Equal(t, DefaultHeight, c.Canvas.Height)
	assert.Equal(t, float32(1), c.Canvas.Scale)
	assert.True(t, c.Share.Enabled)
	assert.Equal(t, DefaultPort, c.Share.Port)
	assert.Equal(t, DefaultService, c.Share.Service)
	assert.NoError(t, c.Validate())

	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

const sampleYAML = `
canvas:
  width: 800
  background: "#202020"
share:
  enabled: false
  port: 9000
log:
  level: debug
brushes:
  - name: pencil
    texture: dot.png
    size: 6
    step: 2
    color: "#ff0000"
    opacity: 0.8
    rotation: random
  - name: glow
    kind: glowing
    size: 20
    coreProportion: 0.5
    coreColor: "#00ff00"
    rotation: ahead
  - name: rubber
    kind: eraser
    size: 30
current: glow
`

func TestLoadAndApply(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "board.yaml", []byte(sampleYAML))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 8))))
	writeFile(t, dir, "dot.png", buf.Bytes())

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, c.Canvas.Width)
	assert.Equal(t, DefaultHeight, c.Canvas.Height)
	assert.Equal(t, color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}, c.BackgroundColor())
	assert.False(t, c.Share.Enabled)
	assert.Equal(t, 9000, c.Share.Port)
	level, err := c.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	assert.Equal(t, brush.KindStamp, c.Brushes[0].Kind)

	reg := brush.NewRegistry()
	tex := render.NewTextures()
	require.NoError(t, c.Apply(reg, tex, dir))
	assert.Len(t, reg.All(), 4)
	assert.Equal(t, "glow", reg.Current().Name())

	pencil, ok := reg.Find("pencil")
	require.True(t, ok)
	assert.Equal(t, "pencil", pencil.Texture())
	_, ok = tex.Find("pencil")
	assert.True(t, ok)
	cfg := pencil.Config()
	assert.Equal(t, float32(6), cfg.PointSize)
	assert.Equal(t, float32(2), cfg.PointStep)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, cfg.Color)
	assert.Equal(t, float32(0.8), cfg.Opacity)
	assert.Equal(t, state.RotationRandom, cfg.Rotation.Kind)
	assert.Equal(t, float32(1), cfg.ForceOnTap)

	g, ok := reg.Current().(*brush.Glowing)
	require.True(t, ok)
	assert.Equal(t, float32(0.5), g.CoreProportion)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, g.CoreColor)
	assert.Equal(t, state.RotationAhead, g.Config().Rotation.Kind)

	rubber, ok := reg.Find("rubber")
	require.True(t, ok)
	assert.Equal(t, state.BlendErase, rubber.Blend())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax":     "canvas: [",
		"background": "canvas:\n  background: white\n",
		"level":      "log:\n  level: loud\n",
		"kind":       "brushes:\n  - name: x\n    kind: crayon\n",
		"color":      "brushes:\n  - name: x\n    color: \"#12\"\n",
		"rotation":   "brushes:\n  - name: x\n    rotation: sideways\n",
		"duplicate":  "brushes:\n  - name: x\n  - name: x\n",
		"unnamed":    "brushes:\n  - size: 3\n",
		"current":    "current: nib\n",
		"core":       "brushes:\n  - name: x\n    kind: glowing\n    coreProportion: 1.5\n",
		"core below": "brushes:\n  - name: x\n    kind: glowing\n    coreProportion: -0.2\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, name+".yaml", []byte(body)))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLogLevel(t *testing.T) {
	c := Default()
	c.Log.Level = "warn"
	level, err := c.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	c.Log.Level = "loud"
	_, err = c.LogLevel()
	assert.Error(t, err)
	assert.Error(t, c.Validate())
}

func TestApplyMissingTexture(t *testing.T) {
	c := Default()
	c.Brushes = []Preset{{Name: "chalk", Kind: brush.KindStamp, Texture: "chalk.png"}}
	reg := brush.NewRegistry()

	err := c.Apply(reg, render.NewTextures(), t.TempDir())
	var rerr *render.ResourceError
	require.ErrorAs(t, err, &rerr)
	_, ok := reg.Find("chalk")
	assert.False(t, ok)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#0f0")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, c)

	_, err = ParseColor("green")
	assert.Error(t, err)
}
