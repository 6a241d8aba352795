// Package detector assembles sized components into a detector module.
//
// A Module hands every component the same available width and height,
// builds the components in order along the beam (Z) axis and records the
// resulting volumes in a design graph. Each component is configured
// through its own commands under the module's command prefix, e.g.
//
//	/det/calo/layers 20
//	/det/calo/maxWidth 30 cm
package detector
