package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/dmitrymomot/pigeon/pkg/sanitizer"
)

// TemplateVariable is the layout variable that carries the content template path.
const TemplateVariable = "_template"

// Renderer renders an HTML layout that wraps a markdown content template.
// The content template is selected by the TemplateVariable entry of the data map.
type Renderer struct {
	fs fs.FS
	md goldmark.Markdown

	allowHTML bool

	// Caches hold parsed structure, never rendered output.
	templateCache map[string]*cachedTemplate
	layoutCache   map[string]*template.Template
	templateDir   string
	layoutDir     string

	mu sync.RWMutex
}

// cachedTemplate holds parsed template data for reuse.
type cachedTemplate struct {
	metadata map[string]any
	tmpl     *texttemplate.Template
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	TemplateDir string `env:"MAILER_TEMPLATE_DIR" envDefault:"templates"`
	LayoutDir   string `env:"MAILER_LAYOUT_DIR" envDefault:"layouts"`
	// AllowHTML keeps raw HTML in markdown templates. The converted
	// content is then passed through sanitizer.Email.
	AllowHTML bool `env:"MAILER_ALLOW_HTML" envDefault:"false"`
}

// NewRenderer creates a new renderer with default config.
func NewRenderer(filesystem fs.FS) *Renderer {
	return NewRendererWithConfig(filesystem, RendererConfig{})
}

// NewRendererWithConfig creates a new renderer with custom config.
func NewRendererWithConfig(filesystem fs.FS, opts RendererConfig) *Renderer {
	if opts.TemplateDir == "" {
		opts.TemplateDir = "templates"
	}
	if opts.LayoutDir == "" {
		opts.LayoutDir = "layouts"
	}

	rendererOpts := []renderer.Option{goldmarkhtml.WithHardWraps()}
	if opts.AllowHTML {
		rendererOpts = append(rendererOpts, goldmarkhtml.WithUnsafe())
	}

	return &Renderer{
		fs:          filesystem,
		templateDir: opts.TemplateDir,
		layoutDir:   opts.LayoutDir,
		allowHTML:   opts.AllowHTML,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(rendererOpts...),
		),
		templateCache: make(map[string]*cachedTemplate),
		layoutCache:   make(map[string]*template.Template),
	}
}

// RenderResult contains the rendered HTML, plain text, and template metadata.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string // Processed markdown, before HTML conversion
}

// Render executes the content template named by data[TemplateVariable] and
// wraps the result in the given layout. The layout receives every variable
// plus Content (rendered HTML) and Metadata (template frontmatter).
func (r *Renderer) Render(layout string, data map[string]any) (*RenderResult, error) {
	result := &RenderResult{Metadata: map[string]any{}}
	var content template.HTML

	if name, _ := data[TemplateVariable].(string); name != "" {
		cached, err := r.getTemplate(name)
		if err != nil {
			return nil, err
		}

		var processed bytes.Buffer
		if err := cached.tmpl.Execute(&processed, data); err != nil {
			return nil, fmt.Errorf("%w: failed to execute template: %v", ErrRenderFailed, err)
		}

		var html bytes.Buffer
		if err := r.md.Convert(processed.Bytes(), &html); err != nil {
			return nil, fmt.Errorf("%w: failed to convert markdown: %v", ErrRenderFailed, err)
		}

		result.Text = processed.String()
		result.Metadata = cached.metadata
		converted := html.String()
		if r.allowHTML {
			converted = sanitizer.Email(converted)
		}
		content = template.HTML(converted)
	}

	layoutTmpl, err := r.getLayout(layout)
	if err != nil {
		return nil, err
	}

	layoutData := maps.Clone(data)
	if layoutData == nil {
		layoutData = map[string]any{}
	}
	layoutData["Content"] = content
	layoutData["Metadata"] = result.Metadata

	var final bytes.Buffer
	if err := layoutTmpl.Execute(&final, layoutData); err != nil {
		return nil, fmt.Errorf("%w: failed to execute layout: %v", ErrRenderFailed, err)
	}
	result.HTML = final.String()

	return result, nil
}

// getTemplate returns a cached content template or parses and caches it.
func (r *Renderer) getTemplate(name string) (*cachedTemplate, error) {
	r.mu.RLock()
	cached, ok := r.templateCache[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have filled the cache while we waited.
	if cached, ok := r.templateCache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	tmpl, err := texttemplate.New(name).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse template body: %v", ErrRenderFailed, err)
	}

	cached = &cachedTemplate{metadata: parsed.Metadata, tmpl: tmpl}
	r.templateCache[name] = cached
	return cached, nil
}

// getLayout returns a cached layout or parses and caches it.
func (r *Renderer) getLayout(name string) (*template.Template, error) {
	r.mu.RLock()
	cached, ok := r.layoutCache[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.layoutCache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse layout: %v", ErrRenderFailed, err)
	}

	r.layoutCache[name] = tmpl
	return tmpl, nil
}
