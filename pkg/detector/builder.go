package detector

import (
	"errors"
	"fmt"

	"github.com/chazu/detgeo/pkg/command"
	"github.com/chazu/detgeo/pkg/component"
	"github.com/chazu/detgeo/pkg/units"
)

var (
	// ErrNegativeSize indicates a module extent below zero.
	ErrNegativeSize = errors.New("size must not be negative")
	// ErrInvalidValue indicates a builder setting outside its domain.
	ErrInvalidValue = errors.New("invalid value")
	// ErrDuplicateComponent indicates two components with the same name.
	ErrDuplicateComponent = errors.New("component name already used")
	// ErrDuplicateVolume indicates two volumes placed under one name.
	ErrDuplicateVolume = errors.New("duplicate volume")
)

// Builder constructs the geometry of one component. Implementations embed
// component.Sized, read the physical width and height from it and grow
// its length with AddLength as they place volumes.
type Builder interface {
	Name() string
	Sizer() *component.Sized
	Construct(a *Assembler) error
}

// Setting is one builder-specific numeric command.
type Setting struct {
	Name     string
	Guidance string
	Category units.Category // units.None for plain numbers
	Set      func(v float64) error
}

// Commander is implemented by builders that accept commands beyond the
// four sizing commands.
type Commander interface {
	Settings() []Setting
}

// settingTable dispatches builder-specific commands by name.
type settingTable map[string]func(float64) error

func newSettingTable(settings []Setting) settingTable {
	t := make(settingTable, len(settings))
	for _, s := range settings {
		t[s.Name] = s.Set
	}
	return t
}

// Dispatch implements command.Handler.
func (t settingTable) Dispatch(cmd *command.Command, raw string) error {
	set, ok := t[cmd.Name()]
	if !ok {
		return command.ErrNotHandled
	}
	v, err := cmd.ParseFloat(raw)
	if err != nil {
		return err
	}
	if err := set(v); err != nil {
		return fmt.Errorf("%s: %w", cmd.Path(), err)
	}
	return nil
}

// definition turns a Setting into a directory registration request.
func (s Setting) definition(prefix string) command.Definition {
	p := command.Parameter{Name: s.Name, Type: command.Double}
	if s.Category != units.None {
		p.Type = command.DoubleWithUnit
		p.Category = s.Category
	}
	return command.Definition{
		Path:      command.Join(prefix, s.Name),
		Guidance:  s.Guidance,
		Parameter: p,
	}
}

// nonNegative wraps a setter so negative values are rejected.
func nonNegative(name string, set func(float64)) func(float64) error {
	return func(v float64) error {
		if v < 0 {
			return fmt.Errorf("%w: %s %g is negative", ErrInvalidValue, name, v)
		}
		set(v)
		return nil
	}
}
