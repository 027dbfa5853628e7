package mailer

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
)

func convert(t *testing.T, class, src string) string {
	t.Helper()

	md := goldmark.New(goldmark.WithExtensions(ActionLinks(class)))
	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte(src), &buf))
	return buf.String()
}

func TestActionLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		class    string
		src      string
		contains []string
		excludes []string
	}{
		{
			name:     "action link",
			src:      "[>Confirm email](https://example.com/confirm?t=1&u=2)",
			contains: []string{`<a href="https://example.com/confirm?t=1&amp;u=2" class="mail-action">Confirm email</a>`},
		},
		{
			name:     "custom class",
			class:    "btn btn-primary",
			src:      "[>Open](https://example.com)",
			contains: []string{`class="btn btn-primary">Open</a>`},
		},
		{
			name:     "surrounding text",
			src:      "Please [>Verify](https://example.com/v) today.",
			contains: []string{"Please ", `class="mail-action">Verify</a>`, " today."},
		},
		{
			name:     "label is escaped",
			src:      "[>a < b](https://example.com)",
			contains: []string{">a &lt; b</a>"},
		},
		{
			name:     "plain link untouched",
			src:      "[Docs](https://example.com/docs)",
			contains: []string{`<a href="https://example.com/docs">Docs</a>`},
			excludes: []string{"mail-action"},
		},
		{
			name:     "dangerous url",
			src:      "[>Click](javascript:alert(1))",
			excludes: []string{"mail-action", "javascript:"},
		},
		{
			name:     "empty label",
			src:      "[>](https://example.com)",
			excludes: []string{"mail-action"},
		},
		{
			name:     "missing destination",
			src:      "[>Click] here",
			excludes: []string{"mail-action"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := convert(t, tt.class, tt.src)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRenderer_ActionLinks(t *testing.T) {
	t.Parallel()

	fs := fstest.MapFS{
		"layouts/base.html": {Data: []byte(`<body>{{.Content}}</body>`)},
		"reset.md":          {Data: []byte("Reset your password:\n\n[>Reset password]({{.URL}})\n")},
	}

	t.Run("default class survives sanitizing", func(t *testing.T) {
		t.Parallel()

		r := NewRenderer(fs)
		result, err := r.Render("base.html", "reset.md", map[string]string{"URL": "https://example.com/reset"})
		require.NoError(t, err)

		assert.Contains(t, result.HTML, `href="https://example.com/reset"`)
		assert.Contains(t, result.HTML, `class="mail-action"`)
		assert.Contains(t, result.HTML, ">Reset password</a>")
		assert.Contains(t, result.Text, "[>Reset password](https://example.com/reset)")
	})

	t.Run("custom class", func(t *testing.T) {
		t.Parallel()

		r := NewRenderer(fs, WithActionClass("cta"))
		result, err := r.Render("base.html", "reset.md", map[string]string{"URL": "https://example.com/reset"})
		require.NoError(t, err)

		assert.Contains(t, result.HTML, `class="cta"`)
	})
}
