//go:build cgo

package hal

import (
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrWindowClosed is returned by step to end the window loop cleanly.
var ErrWindowClosed = errors.New("window closed")

// RunWindow opens a desktop window that shows the framebuffer at 1x and
// forwards mouse and keyboard input. step runs once per frame after input
// has been polled. It blocks until the window closes and must be called
// from the main goroutine.
func RunWindow(h HAL, step func() error, title string) error {
	hh, ok := h.(*hostHAL)
	if !ok {
		return errors.New("run window: HAL was not created by hal.New")
	}

	g := &hostGame{h: hh, step: step}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(hh.fb.width, hh.fb.height)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	if errors.Is(err, ErrWindowClosed) {
		return nil
	}
	return err
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.ptr.poll(g.h.fb.width, g.h.fb.height)
	g.h.t.step(1)
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)
	expandRGB565(g.img.Pix, g.scratch)

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
