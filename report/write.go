package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/storefront-qa/api-contract-tests/framework"
)

// RendererForPath returns MarkdownRenderer for a .md or .markdown file, and JSONRenderer for
// anything else.
func RendererForPath(path string) Renderer {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return MarkdownRenderer{}
	default:
		return JSONRenderer{}
	}
}

// WriteFile saves the results at the specified path, replacing any existing file.
func WriteFile(path string, info RunInfo, results framework.Results) error {
	var buf bytes.Buffer
	if err := RendererForPath(path).Render(&buf, info, results); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
