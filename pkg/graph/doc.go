// Package graph defines the design graph produced when a detector module
// is built. The graph is a DAG of volumes, placements and groups; it is
// never mutated after the build that produced it.
package graph
