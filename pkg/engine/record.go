package engine

import (
	"strconv"
	"strings"

	"github.com/chazu/detgeo/pkg/command"
)

// History returns the command lines the directory accepted, oldest first.
func (e *Engine) History() []string {
	var lines []string
	e.Do(func(dir *command.Directory) error {
		lines = dir.History()
		return nil
	})
	return lines
}

// Record renders command lines as a macro that replays them in order,
// one cmd form per line.
func Record(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		path, raw := l, ""
		if i := strings.IndexAny(l, " \t"); i >= 0 {
			path, raw = l[:i], strings.TrimSpace(l[i:])
		}
		b.WriteString("(cmd ")
		b.WriteString(strconv.Quote(path))
		if raw != "" {
			b.WriteByte(' ')
			b.WriteString(strconv.Quote(raw))
		}
		b.WriteString(")\n")
	}
	return b.String()
}
