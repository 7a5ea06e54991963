//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var hostKeys = []struct {
	key  ebiten.Key
	code KeyCode
}{
	{ebiten.KeyArrowUp, KeyUp},
	{ebiten.KeyArrowDown, KeyDown},
	{ebiten.KeyArrowLeft, KeyLeft},
	{ebiten.KeyArrowRight, KeyRight},
	{ebiten.KeyEnter, KeyEnter},
	{ebiten.KeyEscape, KeyEscape},
	{ebiten.KeyBackspace, KeyBackspace},
	{ebiten.KeyTab, KeyTab},
	{ebiten.KeyDelete, KeyDelete},
	{ebiten.KeyHome, KeyHome},
	{ebiten.KeyEnd, KeyEnd},
}

func (k *hostKeyboard) poll() {
	for _, r := range ebiten.AppendInputChars(nil) {
		k.push(KeyEvent{Press: true, Rune: r})
	}

	// Navigation keys only; letters arrive as text input above.
	for _, hk := range hostKeys {
		if inpututil.IsKeyJustPressed(hk.key) {
			k.push(KeyEvent{Code: hk.code, Press: true})
		}
		if inpututil.IsKeyJustReleased(hk.key) {
			k.push(KeyEvent{Code: hk.code, Press: false})
		}
	}
}

func (p *hostPointer) poll(width, height int) {
	x, y := ebiten.CursorPosition()
	inside := x >= 0 && y >= 0 && x < width && y < height
	p.sample(x, y, inside, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}
