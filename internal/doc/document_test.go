package doc

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BrushBoard/internal/brush"
	"BrushBoard/internal/state"
)

func sampleHistory(t *testing.T) *state.History {
	t.Helper()
	h := state.NewHistory(nil)

	old := state.NewStroke(brush.DefaultName, color.NRGBA{A: 255}, state.Rotation{},
		state.Segment{End: state.Point{X: 1}, PointSize: 1, PointStep: 1})
	h.Append(old)
	require.True(t, h.Clear("me"))

	core := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	glow := state.NewStroke("glow", color.NRGBA{R: 10, G: 20, B: 30, A: 77}, state.Rotation{},
		state.Segment{Begin: state.Point{X: 1, Y: 2}, End: state.Point{X: 3.5, Y: 4}, PointSize: 20, PointStep: 2},
		state.Segment{Begin: state.Point{X: 1, Y: 2}, End: state.Point{X: 3.5, Y: 4}, PointSize: 5, PointStep: 1, Color: &core},
	)
	glow.Owner = "me"
	h.Append(glow)
	h.FinishCurrentElement()

	h.Insert(&state.Chartlet{Center: state.Point{X: 50, Y: 50}, Width: 10, Height: 20, TextureID: "star", Angle: 0.5, Owner: "peer"})

	plain := state.NewStroke(brush.DefaultName, color.NRGBA{B: 200, A: 255}, state.Rotation{},
		state.Segment{Begin: state.Point{X: 7}, End: state.Point{X: 9}, PointSize: 4, PointStep: 1})
	h.Append(plain)
	h.FinishCurrentElement()
	return h
}

func registry(t *testing.T) *brush.Registry {
	t.Helper()
	r := brush.NewRegistry()
	g := brush.NewGlowing("glow", "")
	g.Config().Rotation = state.Rotation{Kind: state.RotationAhead}
	require.NoError(t, r.Register(g))
	return r
}

func TestRoundTrip(t *testing.T) {
	h := sampleHistory(t)
	d := FromHistory(h, image.Pt(640, 480))
	assert.NotEmpty(t, d.Info.Identifier)
	assert.Equal(t, Info{Identifier: d.Info.Identifier, Version: Version, Lines: 2, Chartlets: 1, Textures: 1}, d.Info)
	assert.Equal(t, Size{Width: 640, Height: 480}, d.Size)

	var buf bytes.Buffer
	require.NoError(t, d.Encode(&buf))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, d, decoded)

	elements, err := decoded.Elements(registry(t))
	require.NoError(t, err)
	want := h.Visible()
	require.Len(t, elements, len(want))

	for i := range want {
		assert.Equal(t, want[i].Idx(), elements[i].Idx())
		assert.Equal(t, want[i].Author(), elements[i].Author())
		switch w := want[i].(type) {
		case *state.Stroke:
			got, ok := elements[i].(*state.Stroke)
			require.True(t, ok)
			assert.Equal(t, w.BrushName, got.BrushName)
			assert.Equal(t, w.Color, got.Color)
			assert.Equal(t, w.Segments, got.Segments)
		case *state.Chartlet:
			assert.Equal(t, w, elements[i])
		}
	}

	glow := elements[0].(*state.Stroke)
	assert.Equal(t, state.RotationAhead, glow.Rotation.Kind, "rotation comes from the registered brush")

	var again bytes.Buffer
	h2 := state.NewHistory(nil)
	h2.Load(elements)
	d2 := FromHistory(h2, image.Pt(640, 480))
	d2.Info.Identifier = d.Info.Identifier
	require.NoError(t, d2.Encode(&again))
	var first bytes.Buffer
	require.NoError(t, d.Encode(&first))
	assert.JSONEq(t, first.String(), again.String())
}

func TestUnresolvedBrush(t *testing.T) {
	d := FromHistory(sampleHistory(t), image.Pt(10, 10))
	_, err := d.Elements(brush.NewRegistry())

	var uerr *UnresolvedBrushError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "glow", uerr.Name)
	assert.Contains(t, err.Error(), `"glow"`)
}

func TestDecodeErrors(t *testing.T) {
	valid := FromHistory(sampleHistory(t), image.Pt(10, 10))

	mutate := func(fn func(d *Document)) string {
		var copyDoc Document
		data, err := json.Marshal(valid)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &copyDoc))
		fn(&copyDoc)
		data, err = json.Marshal(&copyDoc)
		require.NoError(t, err)
		return string(data)
	}

	cases := map[string]string{
		"malformed":   `{"info": {`,
		"not object":  `[1, 2]`,
		"old version": mutate(func(d *Document) { d.Info.Version = 0 }),
		"new version": mutate(func(d *Document) { d.Info.Version = Version + 1 }),
		"bad color":   mutate(func(d *Document) { d.Strokes[0].Color = "red" }),
		"bad segment": mutate(func(d *Document) { d.Strokes[0].Lines[1].Color = "#12345" }),
		"tiny step":   mutate(func(d *Document) { d.Strokes[0].Lines[0].PointStep = 1e-3 }),
		"zero step":   mutate(func(d *Document) { d.Strokes[0].Lines[0].PointStep = 0 }),
		"negative":    mutate(func(d *Document) { d.Strokes[0].Lines[0].PointSize = -1 }),
		"overflow":    strings.Replace(mutate(func(d *Document) { d.Strokes[0].Lines[0].End.X = 98765.4 }), `"x":98765.4`, `"x":1e39`, 1),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			var derr *DecodeError
			require.ErrorAs(t, err, &derr)
			assert.Error(t, derr.Unwrap())
		})
	}
}

func TestStrokeElementRejectsUnboundedLines(t *testing.T) {
	reg := brush.NewRegistry()
	line := Line{End: state.Point{X: 1000}, PointSize: 1, PointStep: 1e-3}
	s := Stroke{Index: 1, Brush: brush.DefaultName, Color: "#000000ff", Lines: []Line{line}}

	_, err := s.Element(reg)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)

	s.Lines[0].PointStep = 1
	s.Lines[0].End.Y = float32(math.NaN())
	_, err = s.Element(reg)
	require.ErrorAs(t, err, &derr)

	s.Lines[0].End.Y = 0
	got, err := s.Element(reg)
	require.NoError(t, err)
	assert.Len(t, got.Vertices(1), 1000)
}

func TestColorFormat(t *testing.T) {
	c := color.NRGBA{R: 0xab, G: 0x01, B: 0xff, A: 0x80}
	assert.Equal(t, "#ab01ff80", formatColor(c))

	got, err := parseColor("#ab01ff80")
	require.NoError(t, err)
	assert.Equal(t, c, got)

	got, err = parseColor("#ab01ff")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xab, G: 0x01, B: 0xff, A: 0xff}, got)

	_, err = parseColor("#gg0000")
	assert.ErrorIs(t, err, errBadColor)
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drawing.json")
	h := sampleHistory(t)
	require.NoError(t, SaveFile(path, h, image.Pt(32, 32)))

	d, elements, err := LoadFile(path, registry(t))
	require.NoError(t, err)
	assert.Equal(t, 2, d.Info.Lines)
	assert.Len(t, elements, 3)

	_, _, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"), registry(t))
	assert.Error(t, err)
}
