package app

import (
	"voxray/engine/camera"
	"voxray/hal"
	"voxray/internal/logx"
)

// drainInput applies every queued key event and reports whether exit was
// requested. It never blocks.
func (s *System) drainInput() (exit bool) {
	in := s.h.Input()
	if in == nil {
		return false
	}
	kbd := in.Keyboard()
	if kbd == nil {
		return false
	}
	ch := kbd.Events()
	for {
		select {
		case ev := <-ch:
			if !ev.Press {
				continue
			}
			if ev.Rune != 0 && s.handleToggle(ev.Rune) {
				continue
			}
			var a camera.Action
			if ev.Rune != 0 {
				a = camera.ActionForRune(ev.Rune)
			} else {
				a = camera.ActionForKey(keyFor(ev.Code))
			}
			if a == camera.Exit {
				return true
			}
			s.cam.Apply(a)
		default:
			return false
		}
	}
}

func (s *System) handleToggle(r rune) bool {
	switch r {
	case 'h', 'H':
		s.showHUD = !s.showHUD
	case 'b', 'B':
		on := !s.rend.Options().SkipEmpty
		s.rend.SetSkipEmpty(on)
		logx.Printf(s.log, "distance skipping: %v", on)
	default:
		return false
	}
	return true
}

func keyFor(c hal.KeyCode) camera.Key {
	switch c {
	case hal.KeyUp:
		return camera.KeyUp
	case hal.KeyDown:
		return camera.KeyDown
	case hal.KeyLeft:
		return camera.KeyLeft
	case hal.KeyRight:
		return camera.KeyRight
	case hal.KeyHome:
		return camera.KeyHome
	case hal.KeyEscape:
		return camera.KeyEscape
	}
	return camera.KeyUnknown
}
