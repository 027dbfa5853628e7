package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"regexp"
	"sync"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dmitrymomot/mailforge/pkg/i18n"
)

// Renderer turns markdown templates with YAML frontmatter into HTML and
// plain text bodies wrapped in an HTML layout.
//
// Templates may call {{t "key"}}, {{tn "key" .Count}} and {{locale}}; they
// resolve against the catalog in the locale carried by the render context.
type Renderer struct {
	fs      fs.FS
	md      goldmark.Markdown
	policy  *bluemonday.Policy
	catalog *i18n.Catalog

	// Parsed structure only, never rendered output.
	templates cache[*parsedTemplate]
	layouts   cache[*template.Template]

	templateDir string
	layoutDir   string
	actionClass string
}

type parsedTemplate struct {
	metadata map[string]any
	// Holds the body as the root and, when the frontmatter sets one,
	// the subject as an associated template.
	tmpl       *texttemplate.Template
	hasSubject bool
}

const subjectTemplate = "subject"

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTemplateDir sets the directory templates are read from. Default ".".
func WithTemplateDir(dir string) RendererOption {
	return func(r *Renderer) { r.templateDir = dir }
}

// WithLayoutDir sets the directory layouts are read from. Default "layouts".
func WithLayoutDir(dir string) RendererOption {
	return func(r *Renderer) { r.layoutDir = dir }
}

// WithCatalog enables the t and tn template helpers.
func WithCatalog(c *i18n.Catalog) RendererOption {
	return func(r *Renderer) { r.catalog = c }
}

// WithActionClass sets the class of [>Label](url) links. Default DefaultActionClass.
func WithActionClass(class string) RendererOption {
	return func(r *Renderer) {
		if class != "" {
			r.actionClass = class
		}
	}
}

// WithHTMLPolicy replaces the sanitizer applied to converted markdown.
func WithHTMLPolicy(p *bluemonday.Policy) RendererOption {
	return func(r *Renderer) {
		if p != nil {
			r.policy = p
		}
	}
}

// NewRenderer creates a renderer reading from filesystem.
func NewRenderer(filesystem fs.FS, opts ...RendererOption) *Renderer {
	r := &Renderer{
		fs:          filesystem,
		templateDir: ".",
		layoutDir:   "layouts",
		actionClass: DefaultActionClass,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.md = goldmark.New(goldmark.WithExtensions(extension.GFM, ActionLinks(r.actionClass)))
	if r.policy == nil {
		r.policy = defaultPolicy()
	}
	return r
}

var classPattern = regexp.MustCompile(`^[\w -]+$`)

// defaultPolicy is the UGC policy plus link classes used by action links.
func defaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classPattern).OnElements("a")
	return p
}

// RenderResult contains the rendered bodies and the template metadata.
type RenderResult struct {
	Metadata map[string]any
	Subject  string // Frontmatter subject executed with the template data
	HTML     string
	Text     string // Processed markdown before HTML conversion
}

// Render is RenderContext with a background context.
func (r *Renderer) Render(layout, name string, data any) (*RenderResult, error) {
	return r.RenderContext(context.Background(), layout, name, data)
}

// RenderContext executes the template called name with data and wraps the
// HTML in layout. The locale stored in ctx by i18n.WithLocale selects the
// catalog language.
func (r *Renderer) RenderContext(ctx context.Context, layout, name string, data any) (*RenderResult, error) {
	parsed, err := r.templates.get(name, func() (*parsedTemplate, error) { return r.loadTemplate(name) })
	if err != nil {
		return nil, err
	}

	locale := r.locale(ctx)
	tmpl, err := parsed.tmpl.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	tmpl.Funcs(r.funcs(locale))

	var markdown bytes.Buffer
	if err := tmpl.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: failed to execute template: %v", ErrRenderFailed, err)
	}

	var subject string
	if parsed.hasSubject {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, subjectTemplate, data); err != nil {
			return nil, fmt.Errorf("%w: failed to execute subject: %v", ErrRenderFailed, err)
		}
		subject = buf.String()
	}

	var converted bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &converted); err != nil {
		return nil, fmt.Errorf("%w: failed to convert markdown: %v", ErrRenderFailed, err)
	}

	layoutTmpl, err := r.layouts.get(layout, func() (*template.Template, error) { return r.loadLayout(layout) })
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	err = layoutTmpl.Execute(&out, map[string]any{
		"Content":  template.HTML(r.policy.SanitizeBytes(converted.Bytes())),
		"Metadata": parsed.metadata,
		"Subject":  subject,
		"Locale":   locale,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute layout: %v", ErrRenderFailed, err)
	}

	return &RenderResult{
		Metadata: parsed.metadata,
		Subject:  subject,
		HTML:     out.String(),
		Text:     markdown.String(),
	}, nil
}

func (r *Renderer) locale(ctx context.Context) string {
	if locale, ok := i18n.LocaleFromContext(ctx); ok {
		return locale
	}
	if r.catalog != nil {
		return r.catalog.DefaultLocale()
	}
	return i18n.DefaultLocale
}

// funcs returns the template helpers bound to locale. Placeholders are
// passed as alternating name/value pairs or a single i18n.M.
func (r *Renderer) funcs(locale string) texttemplate.FuncMap {
	return texttemplate.FuncMap{
		"locale": func() string { return locale },
		"t": func(key string, args ...any) string {
			if r.catalog == nil {
				return key
			}
			return r.catalog.T(locale, key, placeholders(args))
		},
		"tn": func(key string, n int, args ...any) string {
			if r.catalog == nil {
				return key
			}
			return r.catalog.Tn(locale, key, n, placeholders(args))
		},
	}
}

func placeholders(args []any) i18n.M {
	if len(args) == 1 {
		if m, ok := args[0].(i18n.M); ok {
			return m
		}
		if m, ok := args[0].(map[string]any); ok {
			return m
		}
	}
	m := make(i18n.M, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		m[fmt.Sprint(args[i])] = args[i+1]
	}
	return m
}

func (r *Renderer) loadTemplate(name string) (*parsedTemplate, error) {
	content, err := fs.ReadFile(r.fs, path.Join(r.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	src, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	// Helpers are declared at parse time and rebound per render.
	tmpl, err := texttemplate.New(name).Funcs(r.funcs("")).Parse(src.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse template body: %v", ErrRenderFailed, err)
	}

	parsed := &parsedTemplate{metadata: src.Metadata, tmpl: tmpl}
	if subject := src.Subject(); subject != "" {
		if _, err := tmpl.New(subjectTemplate).Parse(subject); err != nil {
			return nil, fmt.Errorf("%w: failed to parse subject: %v", ErrRenderFailed, err)
		}
		parsed.hasSubject = true
	}
	return parsed, nil
}

func (r *Renderer) loadLayout(name string) (*template.Template, error) {
	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse layout: %v", ErrRenderFailed, err)
	}
	return tmpl, nil
}

// cache is a read-mostly map filled on first use.
type cache[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

func (c *cache[T]) get(key string, load func() (T, error)) (T, error) {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.items[key]; ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if c.items == nil {
		c.items = make(map[string]T)
	}
	c.items[key] = v
	return v, nil
}
