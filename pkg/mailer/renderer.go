package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Rendered is the output of Renderer.Render.
type Rendered struct {
	Meta    Meta
	Subject string
	HTML    string
	Text    string
}

type parsed struct {
	meta    Meta
	subject *texttemplate.Template
	body    *texttemplate.Template
}

// Renderer reads "<name>.md" templates and "layout.html" from an fs.FS.
// Parsed templates are cached; the output is rendered per call.
type Renderer struct {
	fsys   fs.FS
	md     goldmark.Markdown
	layout *template.Template
	cache  map[string]*parsed
	mu     sync.RWMutex
}

// NewRenderer parses the layout eagerly so a broken layout fails at startup.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	layout, err := template.ParseFS(fsys, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("%w: layout: %v", ErrTemplateNotFound, err)
	}
	return &Renderer{
		fsys:   fsys,
		md:     goldmark.New(goldmark.WithExtensions(extension.Linkify)),
		layout: layout,
		cache:  make(map[string]*parsed),
	}, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data any) (*Rendered, error) {
	p, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var subject, text, html, page bytes.Buffer
	if err := p.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("%w: subject: %v", ErrRenderFailed, err)
	}
	if err := p.body.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrRenderFailed, err)
	}
	if err := r.md.Convert(text.Bytes(), &html); err != nil {
		return nil, fmt.Errorf("%w: markdown: %v", ErrRenderFailed, err)
	}
	if err := r.layout.Execute(&page, map[string]any{
		"Subject": subject.String(),
		"Content": template.HTML(html.String()),
	}); err != nil {
		return nil, fmt.Errorf("%w: layout: %v", ErrRenderFailed, err)
	}

	return &Rendered{
		Meta:    p.meta,
		Subject: subject.String(),
		HTML:    page.String(),
		Text:    text.String(),
	}, nil
}

func (r *Renderer) template(name string) (*parsed, error) {
	r.mu.RLock()
	p, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	content, err := fs.ReadFile(r.fsys, path.Clean(name)+".md")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	meta, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	p = &parsed{meta: meta}
	if p.subject, err = texttemplate.New(name + ":subject").Parse(meta.Subject); err != nil {
		return nil, fmt.Errorf("%w: %s subject: %v", ErrRenderFailed, name, err)
	}
	if p.body, err = texttemplate.New(name).Parse(string(body)); err != nil {
		return nil, fmt.Errorf("%w: %s body: %v", ErrRenderFailed, name, err)
	}

	r.mu.Lock()
	r.cache[name] = p
	r.mu.Unlock()
	return p, nil
}
