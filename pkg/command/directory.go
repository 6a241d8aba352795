package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Directory is the command dispatcher. It stores registered commands by
// path and routes applied command lines to the owning handler.
//
// Directory is not safe for concurrent use. Configuration happens on one
// goroutine before geometry is built.
type Directory struct {
	commands map[string]*Command
	history  []string
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{commands: make(map[string]*Command)}
}

// Register adds a command. The returned Command is the handle the owner
// must later pass to Unregister.
func (d *Directory) Register(def Definition) (*Command, error) {
	if d == nil {
		return nil, errors.New("directory is required")
	}
	path := normalizePath(def.Path)
	if path == "" || path == "/" {
		return nil, ErrPathRequired
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: %q", ErrPathNotAbsolute, path)
	}
	if def.Handler == nil {
		return nil, fmt.Errorf("%w: %s", ErrHandlerRequired, path)
	}
	if d.commands == nil {
		d.commands = make(map[string]*Command)
	}
	if _, exists := d.commands[path]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, path)
	}
	cmd := &Command{
		path:      path,
		name:      path[strings.LastIndex(path, "/")+1:],
		guidance:  def.Guidance,
		parameter: def.Parameter,
		handler:   def.Handler,
	}
	d.commands[path] = cmd
	return cmd, nil
}

// Unregister removes cmd. It reports whether cmd was registered; a stale
// handle whose path has been taken by another command is left alone.
func (d *Directory) Unregister(cmd *Command) bool {
	if d == nil || cmd == nil {
		return false
	}
	cur, ok := d.commands[cmd.path]
	if !ok || cur != cmd {
		return false
	}
	delete(d.commands, cmd.path)
	return true
}

// Lookup returns the command registered at path.
func (d *Directory) Lookup(path string) (*Command, bool) {
	if d == nil {
		return nil, false
	}
	cmd, ok := d.commands[normalizePath(path)]
	return cmd, ok
}

// List returns the sorted paths under prefix. An empty prefix lists all.
func (d *Directory) List(prefix string) []string {
	if d == nil || len(d.commands) == 0 {
		return nil
	}
	prefix = normalizePath(prefix)
	var paths []string
	for p := range d.commands {
		if prefix == "" || prefix == "/" || p == prefix || strings.HasPrefix(p, prefix+"/") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of registered commands.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.commands)
}

// Apply executes one command line of the form "<path> <value...>".
// The value is everything after the first run of whitespace.
func (d *Directory) Apply(line string) error {
	line = strings.TrimSpace(line)
	path, raw := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		path, raw = line[:i], strings.TrimSpace(line[i:])
	}
	return d.Execute(path, raw)
}

// Execute routes raw to the command at path.
func (d *Directory) Execute(path, raw string) error {
	if path == "" {
		return ErrPathRequired
	}
	cmd, ok := d.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, path)
	}
	if raw == "" {
		if !cmd.parameter.Omittable {
			return fmt.Errorf("%w: %s %s", ErrMissingParameter, cmd.path, cmd.parameter.Name)
		}
		raw = cmd.parameter.Default
	}
	if err := cmd.handler.Dispatch(cmd, raw); err != nil {
		if errors.Is(err, ErrNotHandled) {
			return fmt.Errorf("%s: %w", cmd.path, ErrNotHandled)
		}
		return err
	}
	d.history = append(d.history, strings.TrimSpace(cmd.path+" "+raw))
	return nil
}

// History returns the command lines applied successfully, oldest first.
func (d *Directory) History() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.history))
	copy(out, d.history)
	return out
}
