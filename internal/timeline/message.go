// Package timeline stores job postings ("messages") and the follow graph,
// and builds the public, per-user and full timelines from them.
package timeline

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/gatlingbook/gatlingbook/pkg/sanitizer"
)

// PageSize is the number of messages on one timeline page.
const PageSize = 30

var (
	ErrEmptyMessage = errors.New("timeline: empty message")
	ErrPersistence  = errors.New("timeline: store unavailable")
	ErrSelfFollow   = errors.New("timeline: cannot follow yourself")
)

// Message is a job posting.
type Message struct {
	PubDate  time.Time
	Author   string
	Email    string
	Title    string
	Text     string // markdown as submitted
	HTML     string // rendered and sanitised Text
	ID       int64
	AuthorID int64
}

var (
	md     goldmark.Markdown
	mdOnce sync.Once
)

// RenderMarkdown converts a posting body to HTML that is safe to embed.
func RenderMarkdown(text string) (string, error) {
	mdOnce.Do(func() {
		md = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	})

	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return sanitizer.Post(buf.String()), nil
}

// normalize trims input and reports whether anything is left to post.
func normalize(title, text string) (string, string, bool) {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	return title, text, text != ""
}
