// Package logx formats log lines for a line-oriented sink such as hal.Logger.
package logx

import "fmt"

// Logger accepts one log line per call, without a trailing newline.
type Logger interface {
	WriteLineString(s string)
}

// Printf formats a line and writes it to l. A nil Logger drops the line.
func Printf(l Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.WriteLineString(fmt.Sprintf(format, args...))
}

// Prefix returns a Logger that prepends prefix to every line.
func Prefix(l Logger, prefix string) Logger {
	if l == nil {
		return Discard
	}
	return prefixed{l: l, prefix: prefix}
}

type prefixed struct {
	l      Logger
	prefix string
}

func (p prefixed) WriteLineString(s string) { p.l.WriteLineString(p.prefix + s) }

// Discard drops every line.
var Discard Logger = discard{}

type discard struct{}

func (discard) WriteLineString(string) {}

// Lines collects lines in memory. It is not safe for concurrent use.
type Lines []string

func (l *Lines) WriteLineString(s string) { *l = append(*l, s) }
