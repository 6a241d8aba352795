package detector

import (
	"fmt"
	"strings"

	"github.com/chazu/detgeo/pkg/command"
	"github.com/chazu/detgeo/pkg/component"
	"github.com/chazu/detgeo/pkg/graph"
)

// Module is the enclosing builder of a detector. It owns its components
// and the messengers that configure them, and is the only code that sets
// a component's available width and height.
type Module struct {
	component.Sized

	name      string
	prefix    string
	dir       *command.Directory
	self      *component.Messenger
	children  []Builder
	messenger map[string]*component.Messenger
}

// NewModule creates a module whose commands live under prefix/name.
// The module registers its own width, height, maxWidth and maxHeight.
func NewModule(dir *command.Directory, prefix, name string) (*Module, error) {
	m := &Module{
		name:      name,
		prefix:    command.Join(prefix, name),
		dir:       dir,
		messenger: make(map[string]*component.Messenger),
	}
	self, err := component.NewMessenger(dir, m.prefix, &m.Sized, nil)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", name, err)
	}
	m.self = self
	return m, nil
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Sizer returns the module's own extents.
func (m *Module) Sizer() *component.Sized { return &m.Sized }

// Prefix returns the command prefix of the module, e.g. "/det/calo".
func (m *Module) Prefix() string { return m.prefix }

// Add appends a component and registers its commands under
// prefix/<component name>. Builders implementing Commander get their
// extra settings chained behind the sizing commands. Names must be
// non-empty and free of "/", since they become one path element of
// both the commands and the volume names.
func (m *Module) Add(b Builder) error {
	name := b.Name()
	if name == "" || strings.ContainsAny(name, "/ \t") {
		return fmt.Errorf("%w: component name %q", ErrInvalidValue, name)
	}
	if _, dup := m.messenger[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
	}

	prefix := command.Join(m.prefix, name)
	var next command.Handler
	var settings []Setting
	if c, ok := b.(Commander); ok {
		settings = c.Settings()
		next = newSettingTable(settings)
	}

	msg, err := component.NewMessenger(m.dir, prefix, b.Sizer(), next)
	if err != nil {
		return fmt.Errorf("component %s: %w", name, err)
	}
	for _, s := range settings {
		if err := msg.Register(s.definition(prefix)); err != nil {
			msg.Close()
			return fmt.Errorf("component %s: %w", name, err)
		}
	}

	m.children = append(m.children, b)
	m.messenger[name] = msg
	return nil
}

// Components returns the components in build order.
func (m *Module) Components() []Builder {
	out := make([]Builder, len(m.children))
	copy(out, m.children)
	return out
}

// Component returns the component with the given name.
func (m *Module) Component(name string) (Builder, bool) {
	for _, b := range m.children {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Configure hands the module's physical width and height to every
// component as its available extent.
func (m *Module) Configure() error {
	w, h := m.PhysicalWidth(), m.PhysicalHeight()
	if w < 0 || h < 0 {
		return fmt.Errorf("module %s: %w (width %g, height %g)", m.name, ErrNegativeSize, w, h)
	}
	for _, b := range m.children {
		s := b.Sizer()
		s.SetWidth(w)
		s.SetHeight(h)
	}
	return nil
}

// Build configures the components and constructs them one after another
// along Z. Component lengths are reset first so repeated builds do not
// accumulate. The module length is the sum of the component lengths.
func (m *Module) Build() (*graph.DesignGraph, error) {
	if err := m.Configure(); err != nil {
		return nil, err
	}

	g := graph.New()
	var placements []graph.NodeID
	m.SetLength(0)

	for _, b := range m.children {
		s := b.Sizer()
		s.SetLength(0)
		a := &Assembler{
			g:          g,
			module:     m.name,
			component:  b.Name(),
			offset:     m.Length(),
			placements: &placements,
		}
		if err := b.Construct(a); err != nil {
			return nil, fmt.Errorf("module %s: construct %s: %w", m.name, b.Name(), err)
		}
		m.AddLength(s.Length())
	}

	id := graph.NewNodeID(m.name)
	g.AddNode(&graph.Node{
		ID:       id,
		Kind:     graph.NodeGroup,
		Name:     m.name,
		Children: placements,
		Data: graph.GroupData{
			Description: fmt.Sprintf("module %s", m.name),
			Width:       m.PhysicalWidth(),
			Height:      m.PhysicalHeight(),
		},
	})
	g.AddRoot(id)
	return g, nil
}

// ComponentSummary reports the dimensions of one component.
type ComponentSummary struct {
	Name       string               `json:"name"`
	Dimensions component.Dimensions `json:"dimensions"`
}

// Summaries returns the module followed by every component.
func (m *Module) Summaries() []ComponentSummary {
	out := []ComponentSummary{{Name: m.name, Dimensions: m.Summary()}}
	for _, b := range m.children {
		out = append(out, ComponentSummary{Name: b.Name(), Dimensions: b.Sizer().Summary()})
	}
	return out
}

// Close releases every command the module and its components registered.
func (m *Module) Close() {
	for _, b := range m.children {
		if msg, ok := m.messenger[b.Name()]; ok {
			msg.Close()
		}
	}
	m.messenger = make(map[string]*component.Messenger)
	m.children = nil
	if m.self != nil {
		m.self.Close()
	}
}
