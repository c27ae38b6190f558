package internal

import (
	"maps"

	"github.com/dmitrymomot/pigeon/pkg/mailer"
)

// Default view paths used when no preset sets them.
const (
	DefaultLayout   = "base.html"
	DefaultTemplate = "default.md"
)

// Layout holds the outer layout, the inner content template and the
// variables both are rendered with. The variables always carry the current
// template path under mailer.TemplateVariable.
type Layout struct {
	variables map[string]any
	layout    string
	template  string
}

// NewLayout creates a Layout with the given view paths.
func NewLayout(layout, template string) *Layout {
	l := &Layout{
		layout:    layout,
		template:  template,
		variables: make(map[string]any),
	}
	l.sync()
	return l
}

// SetLayout replaces the outer layout path.
func (l *Layout) SetLayout(path string) {
	l.layout = path
}

// SetTemplate replaces the content template path.
func (l *Layout) SetTemplate(path string) {
	l.template = path
	l.sync()
}

// MergeVariables adds vars, overwriting existing keys.
// A caller supplied template variable is discarded.
func (l *Layout) MergeVariables(vars map[string]any) {
	for k, v := range vars {
		if k == mailer.TemplateVariable {
			continue
		}
		l.variables[k] = v
	}
	l.sync()
}

// ClearVariables drops every variable except the template path.
func (l *Layout) ClearVariables() {
	clear(l.variables)
	l.sync()
}

// Layout returns the outer layout path.
func (l *Layout) Layout() string { return l.layout }

// Template returns the content template path.
func (l *Layout) Template() string { return l.template }

// Variables returns a copy of the render variables.
func (l *Layout) Variables() map[string]any {
	return maps.Clone(l.variables)
}

func (l *Layout) sync() {
	l.variables[mailer.TemplateVariable] = l.template
}
