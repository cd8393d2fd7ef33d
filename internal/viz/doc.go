// Package viz renders terminal output for the mbtree CLI: lipgloss styles
// for the model inspection views, a tree topology dump, and asciigraph
// sweep plots.
package viz
