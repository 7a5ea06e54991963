package mathfont

import (
	"image/color"
	"testing"

	"tinygo.org/x/tinyfont"
)

type pixelSet map[[2]int16]bool

func (p pixelSet) Size() (x, y int16)                { return 100, 100 }
func (p pixelSet) SetPixel(x, y int16, _ color.RGBA) { p[[2]int16{x, y}] = true }
func (p pixelSet) Display() error                    { return nil }

func TestASCIITableComplete(t *testing.T) {
	if got, want := len(ascii), (0x7e-0x20+1)*5; got != want {
		t.Fatalf("ascii table has %d bytes, want %d", got, want)
	}
}

func TestMinusSitsMidHeight(t *testing.T) {
	px := pixelSet{}
	tinyfont.DrawChar(px, Small, 10, 20, '−', color.RGBA{A: 255})
	if len(px) != 5 {
		t.Fatalf("minus drew %d pixels, want 5", len(px))
	}
	for x := int16(10); x < 15; x++ {
		if !px[[2]int16{x, 17}] {
			t.Fatalf("missing pixel at (%d,17): %v", x, px)
		}
	}
}

func TestMediumDoublesPixels(t *testing.T) {
	small := pixelSet{}
	medium := pixelSet{}
	tinyfont.DrawChar(small, Small, 0, 10, 'λ', color.RGBA{A: 255})
	tinyfont.DrawChar(medium, Medium, 0, 20, 'λ', color.RGBA{A: 255})
	if len(small) == 0 || len(medium) != 4*len(small) {
		t.Fatalf("small=%d medium=%d", len(small), len(medium))
	}
	for p := range medium {
		if p[1] > 20 || p[1] < 20-13 {
			t.Fatalf("pixel %v outside the glyph box", p)
		}
	}
}

func TestUnknownRuneFallsBack(t *testing.T) {
	q := pixelSet{}
	u := pixelSet{}
	tinyfont.DrawChar(q, Small, 0, 10, '?', color.RGBA{A: 255})
	tinyfont.DrawChar(u, Small, 0, 10, 'Ж', color.RGBA{A: 255})
	if len(q) == 0 || len(q) != len(u) {
		t.Fatalf("fallback drew %d pixels, '?' drew %d", len(u), len(q))
	}
}
