package render

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"sync"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"BrushBoard/internal/logging"
)

const dotSize = 64

// Textures is a registry of decoded textures keyed by id. The empty id
// always resolves to a soft round dot.
type Textures struct {
	mu     sync.RWMutex
	images map[string]image.Image
	dot    image.Image
}

func NewTextures() *Textures {
	return &Textures{
		images: make(map[string]image.Image),
		dot:    roundDot(dotSize),
	}
}

// Add registers img under id, replacing any texture with that id.
func (t *Textures) Add(id string, img image.Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.images[id] = img
}

// Load decodes a PNG, JPEG, BMP or WebP texture from r and registers it.
// An empty id gets a generated one. If id is already registered the
// existing texture is kept and nothing is read.
func (t *Textures) Load(id string, r io.Reader) (string, error) {
	if id != "" {
		if _, ok := t.Find(id); ok {
			return id, nil
		}
	} else {
		id = uuid.NewString()
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return "", &ResourceError{ID: id, Err: err}
	}
	t.Add(id, img)
	logging.Logger().Debug("texture loaded", "id", id, "format", format, "size", img.Bounds().Size())
	return id, nil
}

// LoadFile is Load reading from a file.
func (t *Textures) LoadFile(id, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if id == "" {
			id = path
		}
		return "", &ResourceError{ID: id, Err: err}
	}
	defer f.Close()
	return t.Load(id, f)
}

// Find returns the texture for id.
func (t *Textures) Find(id string) (image.Image, bool) {
	if id == "" {
		return t.dot, true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	img, ok := t.images[id]
	return img, ok
}

// Len returns the number of registered textures, not counting the dot.
func (t *Textures) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.images)
}

// roundDot is an alpha disc with a one pixel soft edge.
func roundDot(size int) *image.Alpha {
	img := image.NewAlpha(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := range size {
		for x := range size {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			d := r - math.Hypot(dx, dy)
			switch {
			case d >= 1:
				img.Pix[y*img.Stride+x] = 0xff
			case d > 0:
				img.Pix[y*img.Stride+x] = uint8(d * 0xff)
			}
		}
	}
	return img
}
