package component

import (
	"fmt"

	"github.com/chazu/detgeo/pkg/command"
	"github.com/chazu/detgeo/pkg/units"
)

// Command names registered by every Messenger.
const (
	CmdWidth     = "width"
	CmdHeight    = "height"
	CmdMaxWidth  = "maxWidth"
	CmdMaxHeight = "maxHeight"
)

type setting struct {
	name     string
	guidance string
	param    string
	set      func(*Sized, float64)
}

var settings = []setting{
	{CmdWidth, "Set the available width.", "width", (*Sized).SetWidth},
	{CmdHeight, "Set the available height.", "height", (*Sized).SetHeight},
	{CmdMaxWidth, "Set the maximum physical width; 0 removes the cap.", "maxWidth", (*Sized).SetMaximumWidth},
	{CmdMaxHeight, "Set the maximum physical height; 0 removes the cap.", "maxHeight", (*Sized).SetMaximumHeight},
}

// Messenger binds the sizing commands under one directory prefix to a
// Sized target. Commands it does not own are passed to next.
type Messenger struct {
	dir     *command.Directory
	target  *Sized
	next    command.Handler
	handles []*command.Command
	setters map[string]func(float64) // keyed by command path
}

// Compile-time interface check.
var _ command.Handler = (*Messenger)(nil)

// NewMessenger registers prefix/width, prefix/height, prefix/maxWidth and
// prefix/maxHeight in dir. next may be nil. If any registration fails the
// commands already registered are released before returning.
func NewMessenger(dir *command.Directory, prefix string, target *Sized, next command.Handler) (*Messenger, error) {
	if target == nil {
		return nil, fmt.Errorf("messenger %s: target is required", prefix)
	}
	m := &Messenger{
		dir:     dir,
		target:  target,
		next:    next,
		setters: make(map[string]func(float64), len(settings)),
	}
	for _, s := range settings {
		set := s.set
		path := command.Join(prefix, s.name)
		m.setters[path] = func(v float64) { set(target, v) }
		if err := m.Register(command.Definition{
			Path:     path,
			Guidance: s.guidance,
			Parameter: command.Parameter{
				Name:     s.param,
				Type:     command.DoubleWithUnit,
				Category: units.Length,
			},
		}); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

// Register adds def to the directory with m as its handler and takes
// ownership of the handle. Builders use it for extra commands that m
// forwards to next.
func (m *Messenger) Register(def command.Definition) error {
	def.Handler = m
	cmd, err := m.dir.Register(def)
	if err != nil {
		return err
	}
	m.handles = append(m.handles, cmd)
	return nil
}

// Commands returns the commands m owns, in registration order.
func (m *Messenger) Commands() []*command.Command {
	out := make([]*command.Command, len(m.handles))
	copy(out, m.handles)
	return out
}

// Dispatch applies raw to the setter bound to cmd's path. Any other
// command goes to next unchanged.
func (m *Messenger) Dispatch(cmd *command.Command, raw string) error {
	set, ok := m.setters[cmd.Path()]
	if !ok {
		if m.next == nil {
			return command.ErrNotHandled
		}
		return m.next.Dispatch(cmd, raw)
	}
	v, err := cmd.ParseFloat(raw)
	if err != nil {
		return err
	}
	set(v)
	return nil
}

// Close releases every command m registered. It is safe to call more
// than once.
func (m *Messenger) Close() {
	for _, h := range m.handles {
		m.dir.Unregister(h)
	}
	m.handles = nil
}
