package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// WithJSONDir loads messages from JSON files in fsys.
// Files live in one directory per locale and the file name becomes the
// key prefix, so en/welcome.json with {"subject": "Hi"} yields the key
// "welcome.subject" for "en".
//
//	en/welcome.json
//	de/welcome.json
func WithJSONDir(fsys fs.FS) Option {
	return func(c *Catalog) error {
		return loadDir(c, fsys, []string{".json"}, json.Unmarshal)
	}
}

// WithYAMLDir is WithJSONDir for .yaml and .yml files.
func WithYAMLDir(fsys fs.FS) Option {
	return func(c *Catalog) error {
		return loadDir(c, fsys, []string{".yaml", ".yml"}, yaml.Unmarshal)
	}
}

func loadDir(c *Catalog, fsys fs.FS, exts []string, unmarshal func([]byte, any) error) error {
	return fs.WalkDir(fsys, ".", func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasExt(filePath, exts) {
			return nil
		}

		dir := path.Dir(filePath)
		if dir == "." {
			return fmt.Errorf("%w: %q must be inside a locale directory", ErrInvalidFile, filePath)
		}
		locale, ok := Canonical(path.Base(dir))
		if !ok {
			return fmt.Errorf("%w: %q: directory is not a locale", ErrInvalidFile, filePath)
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("reading %q: %w", filePath, err)
		}

		var messages map[string]any
		if err := unmarshal(data, &messages); err != nil {
			return fmt.Errorf("%w: parsing %q: %v", ErrInvalidFile, filePath, err)
		}

		prefix := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
		c.add(locale, prefix, messages)
		return nil
	})
}

func hasExt(name string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(path.Ext(name)))
}
