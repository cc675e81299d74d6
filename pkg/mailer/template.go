package mailer

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta is the front matter of a template.
type Meta struct {
	Subject string `yaml:"subject"`
	ReplyTo string `yaml:"reply_to"`
}

var delimiter = []byte("---")

// splitFrontMatter separates YAML front matter from the markdown body.
// Content without a leading delimiter is all body.
func splitFrontMatter(content []byte) (Meta, []byte, error) {
	var meta Meta

	content = bytes.TrimLeft(content, "\uFEFF")
	if !bytes.HasPrefix(content, delimiter) {
		return meta, content, nil
	}

	rest := bytes.TrimLeft(content[len(delimiter):], "\r\n")
	end := bytes.Index(rest, delimiter)
	if end < 0 {
		return meta, nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}

	body := rest[end+len(delimiter):]
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))
	return meta, body, nil
}
