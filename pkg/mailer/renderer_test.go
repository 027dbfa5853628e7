package mailer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailforge/pkg/i18n"
)

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(`<html lang="{{.Locale}}"><title>{{.Subject}}</title><body>{{.Content}}</body></html>`)},
		"welcome.md": {Data: []byte("---\nSubject: Welcome {{.Name}}\n---\nHello **{{.Name}}**!\n\nWelcome to our service.\n")},
		"localized.md": {Data: []byte("---\nSubject: '{{t \"welcome.subject\" \"name\" .Name}}'\n---\n{{t \"welcome.body\"}} ({{locale}}), {{tn \"welcome.items\" .Count}}\n")},
		"unsafe.md": {Data: []byte("Click [here](javascript:alert(1))\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")},
	}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testTemplates())

	result, err := r.Render("base.html", "welcome.md", map[string]string{"Name": "Alice"})
	require.NoError(t, err)

	require.Equal(t, "Welcome Alice", result.Subject)
	require.Equal(t, "Welcome {{.Name}}", result.Metadata["Subject"])
	require.Contains(t, result.Text, "Hello **Alice**!")
	require.NotContains(t, result.Text, "<strong>")
	require.Contains(t, result.HTML, "<strong>Alice</strong>")
	require.Contains(t, result.HTML, "<title>Welcome Alice</title>")
	require.Contains(t, result.HTML, `lang="en"`)
}

func TestRenderer_RenderContext_Localized(t *testing.T) {
	t.Parallel()

	catalog, err := i18n.New(
		i18n.WithMessages("en", map[string]any{"welcome": map[string]any{
			"subject": "Welcome {{name}}",
			"body":    "Hello",
			"items":   map[string]any{"one": "{{count}} item", "other": "{{count}} items"},
		}}),
		i18n.WithMessages("de", map[string]any{"welcome": map[string]any{
			"subject": "Willkommen {{name}}",
			"body":    "Hallo",
		}}),
	)
	require.NoError(t, err)

	r := NewRenderer(testTemplates(), WithCatalog(catalog))
	data := map[string]any{"Name": "Ada", "Count": 2}

	en, err := r.RenderContext(context.Background(), "base.html", "localized.md", data)
	require.NoError(t, err)
	require.Equal(t, "Welcome Ada", en.Subject)
	require.Contains(t, en.Text, "Hello (en), 2 items")

	de, err := r.RenderContext(i18n.WithLocale(context.Background(), "de"), "base.html", "localized.md", data)
	require.NoError(t, err)
	require.Equal(t, "Willkommen Ada", de.Subject)
	require.Contains(t, de.Text, "Hallo (de), 2 items")
	require.Contains(t, de.HTML, `lang="de"`)
}

func TestRenderer_Render_SanitizesHTML(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testTemplates())

	result, err := r.Render("base.html", "unsafe.md", nil)
	require.NoError(t, err)
	require.NotContains(t, result.HTML, "javascript:")
	require.Contains(t, result.HTML, "<table>")
}

func TestRenderer_Render_Errors(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testTemplates())

	_, err := r.Render("base.html", "missing.md", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = r.Render("missing.html", "welcome.md", map[string]string{"Name": "A"})
	require.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestRenderer_Render_CachesTemplates(t *testing.T) {
	t.Parallel()

	var reads atomic.Int32
	cfs := &countingFS{MapFS: testTemplates(), reads: &reads}
	r := NewRenderer(cfs)

	_, err := r.Render("base.html", "welcome.md", map[string]string{"Name": "Alice"})
	require.NoError(t, err)
	require.Equal(t, int32(2), reads.Load(), "template and layout are read once")

	_, err = r.Render("base.html", "welcome.md", map[string]string{"Name": "Bob"})
	require.NoError(t, err)
	require.Equal(t, int32(2), reads.Load())

	cfs.MapFS["layouts/other.html"] = &fstest.MapFile{Data: []byte(`<div>{{.Content}}</div>`)}
	_, err = r.Render("other.html", "welcome.md", map[string]string{"Name": "Charlie"})
	require.NoError(t, err)
	require.Equal(t, int32(3), reads.Load(), "only the new layout is read")
}

func TestRenderer_Render_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRenderer(testTemplates())

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := range 50 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := r.Render("base.html", "welcome.md", map[string]int{"Name": id}); err != nil {
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
