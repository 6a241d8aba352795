package component

import (
	"fmt"

	"github.com/chazu/detgeo/pkg/units"
)

// Sized tracks the extents of one component. The containing module sets
// the available width and height; builders grow the length while they
// construct; operators may cap the physical width and height.
//
// The zero value is a component with every extent zero and no caps.
// No setter validates its input.
type Sized struct {
	availableWidth  float64
	availableHeight float64
	length          float64
	maximumWidth    float64
	maximumHeight   float64
}

// SetWidth stores the available width handed down by the parent.
func (s *Sized) SetWidth(w float64) { s.availableWidth = w }

// SetHeight stores the available height handed down by the parent.
func (s *Sized) SetHeight(h float64) { s.availableHeight = h }

// Width returns the available (unclamped) width.
func (s *Sized) Width() float64 { return s.availableWidth }

// Height returns the available (unclamped) height.
func (s *Sized) Height() float64 { return s.availableHeight }

// SetMaximumWidth caps the physical width. A non-positive value removes the cap.
func (s *Sized) SetMaximumWidth(w float64) { s.maximumWidth = w }

// SetMaximumHeight caps the physical height. A non-positive value removes the cap.
func (s *Sized) SetMaximumHeight(h float64) { s.maximumHeight = h }

// MaximumWidth returns the width cap as set, including non-positive values.
func (s *Sized) MaximumWidth() float64 { return s.maximumWidth }

// MaximumHeight returns the height cap as set, including non-positive values.
func (s *Sized) MaximumHeight() float64 { return s.maximumHeight }

// PhysicalWidth is the width a builder must construct.
func (s *Sized) PhysicalWidth() float64 {
	return clamp(s.availableWidth, s.maximumWidth)
}

// PhysicalHeight is the height a builder must construct.
func (s *Sized) PhysicalHeight() float64 {
	return clamp(s.availableHeight, s.maximumHeight)
}

// clamp applies limit only when it is positive and strictly smaller
// than available.
func clamp(available, limit float64) float64 {
	if limit > 0 && limit < available {
		return limit
	}
	return available
}

// Length returns the accumulated length along the beam axis.
func (s *Sized) Length() float64 { return s.length }

// SetLength overwrites the accumulated length.
func (s *Sized) SetLength(t float64) { s.length = t }

// AddLength grows the length by t. Builders call this once per slice of
// material they construct.
func (s *Sized) AddLength(t float64) { s.length += t }

// Dimensions is a snapshot of a Sized for reports.
type Dimensions struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	MaximumWidth   float64 `json:"maximumWidth"`
	MaximumHeight  float64 `json:"maximumHeight"`
	PhysicalWidth  float64 `json:"physicalWidth"`
	PhysicalHeight float64 `json:"physicalHeight"`
	Length         float64 `json:"length"`
}

// Summary returns the current dimensions.
func (s *Sized) Summary() Dimensions {
	return Dimensions{
		Width:          s.availableWidth,
		Height:         s.availableHeight,
		MaximumWidth:   s.maximumWidth,
		MaximumHeight:  s.maximumHeight,
		PhysicalWidth:  s.PhysicalWidth(),
		PhysicalHeight: s.PhysicalHeight(),
		Length:         s.length,
	}
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%s x %s x %s (available %s x %s)",
		units.Format(units.Length, d.PhysicalWidth),
		units.Format(units.Length, d.PhysicalHeight),
		units.Format(units.Length, d.Length),
		units.Format(units.Length, d.Width),
		units.Format(units.Length, d.Height))
}
