package panorama

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Screenshot queues a labeled capture of the next drawn frame. Files land in
// the screenshot directory as <timestamp>_<label>.png.
func (p *Page) Screenshot(label string) {
	p.shots = append(p.shots, label)
}

// flushScreenshots writes every queued capture of screen. Called at the end
// of Draw.
func (p *Page) flushScreenshots(screen *ebiten.Image) {
	if len(p.shots) == 0 {
		return
	}
	defer func() { p.shots = p.shots[:0] }()

	b := screen.Bounds()
	pix := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pix)
	p.saveShots(unpremultiply(pix, b.Dx(), b.Dy()), p.now())
}

// saveShots encodes img once and writes one file per queued label. It
// returns the paths written.
func (p *Page) saveShots(img image.Image, now time.Time) []string {
	if err := os.MkdirAll(p.shotDir, 0o755); err != nil {
		p.log.Warn("screenshot dir", zap.String("dir", p.shotDir), zap.Error(err))
		return nil
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		p.log.Warn("screenshot encode", zap.Error(err))
		return nil
	}

	stamp := now.Format("20060102_150405.000")
	var paths []string
	for _, label := range p.shots {
		path := filepath.Join(p.shotDir, stamp+"_"+shotLabel(label)+".png")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			p.log.Warn("screenshot", zap.String("path", path), zap.Error(err))
			continue
		}
		p.log.Info("screenshot saved", zap.String("path", path))
		paths = append(paths, path)
	}
	return paths
}

// unpremultiply converts ebiten's premultiplied pixels to straight alpha.
func unpremultiply(pix []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := i; c < i+3; c++ {
			img.Pix[c] = uint8(min(int(img.Pix[c])*255/a, 255))
		}
	}
	return img
}

// shotLabel turns a script label into a file name part: runs of anything
// other than letters, digits, '-' and '.' collapse into one '_'.
func shotLabel(label string) string {
	words := strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '.'
	})
	if len(words) == 0 {
		return "frame"
	}
	return strings.Join(words, "_")
}
