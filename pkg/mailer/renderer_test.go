package mailer

import (
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`<html><body>{{.Content}}<footer>{{.appName}}</footer></body></html>`),
		},
		"templates/welcome.md": &fstest.MapFile{
			Data: []byte("---\nSubject: Welcome {{.name}}\n---\nHello **{{.name}}**!\n\nWelcome to our service.\n"),
		},
	}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testFS())

	result, err := r.Render("base.html", map[string]any{
		TemplateVariable: "welcome.md",
		"name":           "Alice",
		"appName":        "Pigeon",
	})
	require.NoError(t, err)

	require.Contains(t, result.Text, "Hello **Alice**!")
	require.NotContains(t, result.Text, "<strong>")
	require.Contains(t, result.HTML, "<strong>Alice</strong>")
	require.Contains(t, result.HTML, "<footer>Pigeon</footer>")
	require.Equal(t, "Welcome {{.name}}", result.Metadata["Subject"])
}

func TestRenderer_Render_LayoutOnly(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testFS())

	result, err := r.Render("base.html", map[string]any{"appName": "Pigeon"})
	require.NoError(t, err)
	require.Empty(t, result.Text)
	require.Contains(t, result.HTML, "<footer>Pigeon</footer>")
}

func TestRenderer_Render_Missing(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testFS())

	_, err := r.Render("base.html", map[string]any{TemplateVariable: "missing.md"})
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = r.Render("missing.html", map[string]any{TemplateVariable: "welcome.md", "name": "A"})
	require.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestRenderer_Render_CustomDirs(t *testing.T) {
	t.Parallel()

	fs := fstest.MapFS{
		"emails/layouts/plain.html": &fstest.MapFile{Data: []byte(`<div>{{.Content}}</div>`)},
		"emails/content/note.md":    &fstest.MapFile{Data: []byte(`Note for {{.name}}`)},
	}
	r := NewRendererWithConfig(fs, RendererConfig{TemplateDir: "emails/content", LayoutDir: "emails/layouts"})

	result, err := r.Render("plain.html", map[string]any{TemplateVariable: "note.md", "name": "Bob"})
	require.NoError(t, err)
	require.Contains(t, result.HTML, "Note for Bob")
}

func TestRenderer_Render_CachesParsedFiles(t *testing.T) {
	t.Parallel()

	var reads atomic.Int32
	cfs := &countingFS{MapFS: testFS(), reads: &reads}
	r := NewRenderer(cfs)

	data := map[string]any{TemplateVariable: "welcome.md", "name": "Alice"}
	_, err := r.Render("base.html", data)
	require.NoError(t, err)
	require.Equal(t, int32(2), reads.Load(), "template and layout read once")

	data["name"] = "Bob"
	result, err := r.Render("base.html", data)
	require.NoError(t, err)
	require.Equal(t, int32(2), reads.Load(), "second render served from cache")
	require.Contains(t, result.Text, "Bob")
}

func TestRenderer_Render_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testFS())

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := range 50 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := r.Render("base.html", map[string]any{TemplateVariable: "welcome.md", "name": id})
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render failed: %v", err)
	}
}

// countingFS wraps MapFS and counts ReadFile calls.
type countingFS struct {
	fstest.MapFS
	reads *atomic.Int32
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.reads.Add(1)
	return c.MapFS.ReadFile(name)
}

func TestRenderer_RawHTML(t *testing.T) {
	t.Parallel()

	fs := testFS()
	fs["templates/invoice.md"] = &fstest.MapFile{
		Data: []byte("Your invoice:\n\n<table><tr><td align=\"right\">{{.total}}</td></tr></table>\n\n<script>alert(1)</script>\n"),
	}
	data := map[string]any{TemplateVariable: "invoice.md", "total": "$42", "appName": "Pigeon"}

	escaped, err := NewRenderer(fs).Render("base.html", data)
	require.NoError(t, err)
	require.NotContains(t, escaped.HTML, "<table>")
	require.Contains(t, escaped.HTML, "raw HTML omitted")

	allowed, err := NewRendererWithConfig(fs, RendererConfig{AllowHTML: true}).Render("base.html", data)
	require.NoError(t, err)
	require.Contains(t, allowed.HTML, `<td align="right">$42</td>`)
	require.NotContains(t, allowed.HTML, "<script>")
	require.NotContains(t, allowed.HTML, "alert(1)")
}
