//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Held keys repeat after repeatDelay ticks, every repeatEvery ticks.
const (
	repeatDelay = 15
	repeatEvery = 3
)

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *hostKeyboard) send(ev KeyEvent) {
	select {
	case k.ch <- ev:
	default:
	}
}

func (k *hostKeyboard) poll() {
	// Printable keys arrive as text so both QWERTY and AZERTY layouts work.
	for _, r := range ebiten.AppendInputChars(nil) {
		k.send(KeyEvent{Press: true, Rune: r})
	}

	keys := [...]struct {
		key  ebiten.Key
		code KeyCode
	}{
		{ebiten.KeyArrowUp, KeyUp},
		{ebiten.KeyArrowDown, KeyDown},
		{ebiten.KeyArrowLeft, KeyLeft},
		{ebiten.KeyArrowRight, KeyRight},
		{ebiten.KeyEscape, KeyEscape},
		{ebiten.KeyHome, KeyHome},
	}
	for _, kk := range keys {
		if inpututil.IsKeyJustReleased(kk.key) {
			k.send(KeyEvent{Code: kk.code, Press: false})
			continue
		}
		d := inpututil.KeyPressDuration(kk.key)
		if d == 1 || (d > repeatDelay && (d-repeatDelay)%repeatEvery == 0) {
			k.send(KeyEvent{Code: kk.code, Press: true})
		}
	}
}
