// Package command implements the named, unit-typed command directory that
// operators use to configure detector components. Each registered command
// belongs to exactly one Handler; the directory parses nothing beyond the
// command path and parameter presence, leaving value interpretation to the
// handler that owns the command.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/detgeo/pkg/units"
)

var (
	// ErrPathRequired indicates an empty command path.
	ErrPathRequired = errors.New("command path is required")
	// ErrPathNotAbsolute indicates a path not rooted at "/".
	ErrPathNotAbsolute = errors.New("command path must start with /")
	// ErrHandlerRequired indicates a definition without an owning handler.
	ErrHandlerRequired = errors.New("command handler is required")
	// ErrDuplicate indicates a path that is already registered.
	ErrDuplicate = errors.New("command already registered")
	// ErrCommandNotFound indicates a path with no registered command.
	ErrCommandNotFound = errors.New("command not found")
	// ErrMissingParameter indicates a mandatory parameter without a value.
	ErrMissingParameter = errors.New("mandatory parameter missing")
	// ErrNotHandled is returned by a handler chain that does not recognize
	// the command it was given.
	ErrNotHandled = errors.New("command not handled")
)

// ParamType is the value type of a command parameter.
type ParamType int

const (
	Double         ParamType = iota // plain number
	DoubleWithUnit                  // number followed by a unit of the parameter category
	String                          // free text
)

func (t ParamType) String() string {
	switch t {
	case Double:
		return "double"
	case DoubleWithUnit:
		return "double-with-unit"
	case String:
		return "string"
	default:
		return fmt.Sprintf("ParamType(%d)", int(t))
	}
}

// Parameter describes the single value a command accepts.
type Parameter struct {
	Name      string
	Type      ParamType
	Category  units.Category // only meaningful for DoubleWithUnit
	Omittable bool
	Default   string // used when Omittable and no value is given
}

// Handler receives commands routed by the directory.
type Handler interface {
	Dispatch(cmd *Command, raw string) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(cmd *Command, raw string) error

// Dispatch calls f.
func (f HandlerFunc) Dispatch(cmd *Command, raw string) error {
	return f(cmd, raw)
}

// Definition is the registration request for one command.
type Definition struct {
	Path      string
	Guidance  string
	Parameter Parameter
	Handler   Handler
}

// Command is a registered command. It is the identity passed to handlers.
type Command struct {
	path      string
	name      string
	guidance  string
	parameter Parameter
	handler   Handler
}

// Path returns the full command path, e.g. "/det/absorber/width".
func (c *Command) Path() string { return c.path }

// Name returns the last path element, e.g. "width".
func (c *Command) Name() string { return c.name }

// Guidance returns the help text.
func (c *Command) Guidance() string { return c.guidance }

// Parameter returns the parameter declaration.
func (c *Command) Parameter() Parameter { return c.parameter }

// ParseFloat interprets raw according to the command's parameter
// declaration and returns the magnitude in internal units.
func (c *Command) ParseFloat(raw string) (float64, error) {
	p := c.parameter
	switch p.Type {
	case DoubleWithUnit:
		v, err := units.Parse(p.Category, raw)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", c.path, err)
		}
		return v, nil
	case Double:
		v, err := units.Parse(units.None, raw)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", c.path, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%s: parameter %q is %s, not numeric", c.path, p.Name, p.Type)
}

func (c *Command) String() string {
	return c.path
}

// normalizePath trims whitespace and any trailing slash.
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// Join builds a command path from a directory prefix and a name.
func Join(prefix, name string) string {
	return strings.TrimRight(normalizePath(prefix), "/") + "/" + strings.Trim(name, "/")
}
