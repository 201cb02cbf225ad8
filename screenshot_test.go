package panorama

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestShotLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"after swipe", "after_swipe"},
		{"  goods-6800.v2 ", "goods-6800.v2"},
		{"a/b\\c", "a_b_c"},
		{"menu:  About Us", "menu_About_Us"},
		{"", "frame"},
		{" // ", "frame"},
	}
	for _, tt := range tests {
		if got := shotLabel(tt.in); got != tt.want {
			t.Errorf("shotLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnpremultiply(t *testing.T) {
	pix := []byte{
		64, 32, 0, 128, // half transparent
		10, 20, 30, 255, // opaque
		0, 0, 0, 0, // clear
	}
	img := unpremultiply(pix, 3, 1)
	want := []byte{127, 63, 0, 128, 10, 20, 30, 255, 0, 0, 0, 0}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Fatalf("pix = %v, want %v", img.Pix, want)
		}
	}
}

func TestSaveShotsWritesEveryLabel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	p := &Page{log: zap.NewNop(), shotDir: dir, shots: []string{"before", "after swipe"}}
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	paths := p.saveShots(image.NewNRGBA(image.Rect(0, 0, 4, 2)), now)
	if len(paths) != 2 {
		t.Fatalf("wrote %v, want two files", paths)
	}
	if want := filepath.Join(dir, "20240501_123000.000_after_swipe.png"); paths[1] != want {
		t.Errorf("path = %q, want %q", paths[1], want)
	}

	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("bounds = %v", b)
	}
}

func TestSaveShotsBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	p := &Page{log: zap.NewNop(), shotDir: file, shots: []string{"x"}}
	if paths := p.saveShots(image.NewNRGBA(image.Rect(0, 0, 1, 1)), time.Now()); paths != nil {
		t.Errorf("wrote %v into a file path", paths)
	}
}
