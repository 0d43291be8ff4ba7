package app

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// reportPanic logs a recovered panic with its stack and paints it over the
// framebuffer so a windowed run shows what happened.
func (s *System) reportPanic(v any, stack []byte) {
	s.log.WriteLineString(fmt.Sprintf("panic: frame=%d value=%v", s.frame, v))
	for _, line := range strings.Split(string(stack), "\n") {
		if line == "" {
			continue
		}
		s.log.WriteLineString(line)
	}

	if s.fb == nil {
		return
	}
	s.fb.ClearRGB(0x40, 0x00, 0x00)

	lines := []string{
		"voxray panic:",
		fmt.Sprintf("frame: %d", s.frame),
		fmt.Sprintf("panic: %v", v),
		"stack:",
	}
	for _, line := range strings.Split(string(stack), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}

	cols := s.hud.Columns(s.fb.Width())
	if cols <= 0 {
		cols = 1
	}
	var wrapped []string
	for _, line := range lines {
		for len(line) > 0 {
			chunk, rest := takeRunes(line, cols)
			wrapped = append(wrapped, chunk)
			line = strings.TrimLeft(rest, " \t")
		}
	}
	if rows := s.hud.Rows(s.fb.Height()); rows > 0 && len(wrapped) > rows {
		wrapped = wrapped[:rows]
	}
	s.hud.Draw(s.fb.Buffer(), s.fb.Width(), s.fb.Height(), wrapped)
	_ = s.fb.Present()
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
