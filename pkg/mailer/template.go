package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// frontmatterDelimiter opens and closes the YAML block at the top of a template.
var frontmatterDelimiter = []byte("---")

// Template is a content template split into frontmatter metadata and markdown body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// ParseTemplate splits template content into frontmatter metadata and markdown body.
// Content without a leading delimiter is treated as body only.
func ParseTemplate(content []byte) (*Template, error) {
	rest, ok := bytes.CutPrefix(content, frontmatterDelimiter)
	if !ok {
		return &Template{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest = bytes.TrimLeft(rest, "\r\n")
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	head, body, found := bytes.Cut(rest, frontmatterDelimiter)
	if !found {
		return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	// Drop exactly one line break after the closing delimiter.
	if b, ok := bytes.CutPrefix(body, []byte("\r\n")); ok {
		body = b
	} else if b, ok := bytes.CutPrefix(body, []byte("\n")); ok {
		body = b
	}

	metadata := map[string]any{}
	if len(bytes.TrimSpace(head)) > 0 {
		if err := yaml.Unmarshal(head, &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return &Template{Metadata: metadata, Body: string(body)}, nil
}
