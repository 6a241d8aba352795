// Package component holds the sizing state shared by every detector
// component and the messenger that lets an operator change it through
// named commands.
package component
