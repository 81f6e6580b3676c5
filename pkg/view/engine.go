package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Option configures an Engine.
type Option func(*Engine)

// WithFuncs adds template functions to every template.
func WithFuncs(funcs map[string]any) Option {
	return func(e *Engine) {
		for k, v := range funcs {
			e.funcs[k] = v
		}
	}
}

// WithPolicy sets the sanitizer applied to rendered markdown.
// Default: bluemonday.UGCPolicy.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithReload disables the parsed template cache so edits show up without a
// restart. Meant for development.
func WithReload(reload bool) Option {
	return func(e *Engine) {
		e.reload = reload
	}
}

// MaxIncludeDepth caps nested include calls within one render.
const MaxIncludeDepth = 32

type kind int

const (
	kindHTML kind = iota
	kindMarkdown
)

type compiled struct {
	kind kind
	html *htmltemplate.Template
	text *texttemplate.Template
}

// Engine resolves and renders templates from a file system.
//
// A name resolves to the first existing file of: name, name.html, name.md.
// Files ending in .md are executed with text/template, converted to HTML
// with goldmark and sanitized; every other file is an html/template.
type Engine struct {
	fsys   fs.FS
	md     goldmark.Markdown
	policy *bluemonday.Policy
	funcs  map[string]any
	reload bool

	mu    sync.RWMutex
	cache map[string]*compiled
}

// NewEngine returns an engine rooted at fsys.
func NewEngine(fsys fs.FS, opts ...Option) *Engine {
	e := &Engine{
		fsys:   fsys,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
		funcs:  make(map[string]any),
		cache:  make(map[string]*compiled),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDirEngine returns an engine rooted at dir on disk.
func NewDirEngine(dir string, opts ...Option) *Engine {
	return NewEngine(os.DirFS(dir), opts...)
}

// Exists reports whether name resolves to a template file.
func (e *Engine) Exists(name string) bool {
	_, err := e.resolve(name)
	return err == nil
}

// Render executes the template name with data and writes the result to w.
func (e *Engine) Render(ctx context.Context, w io.Writer, name string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	depth, _ := ctx.Value(includeDepthKey{}).(int)
	if depth > MaxIncludeDepth {
		return errors.Join(ErrIncludeDepth, fmt.Errorf("%s: %d levels", name, depth))
	}
	t, err := e.load(name)
	if err != nil {
		return err
	}
	funcs := e.renderFuncs(ctx, depth)

	switch t.kind {
	case kindMarkdown:
		tmpl, err := t.text.Clone()
		if err != nil {
			return errors.Join(ErrRender, fmt.Errorf("%s: %w", name, err))
		}
		var src bytes.Buffer
		if err := tmpl.Funcs(funcs).Execute(&src, data); err != nil {
			return errors.Join(ErrRender, fmt.Errorf("%s: %w", name, err))
		}
		var out bytes.Buffer
		if err := e.md.Convert(src.Bytes(), &out); err != nil {
			return errors.Join(ErrRender, fmt.Errorf("%s: %w", name, err))
		}
		_, err = e.policy.SanitizeReader(&out).WriteTo(w)
		return err
	default:
		// The cached template is never executed, so it stays clonable.
		tmpl, err := t.html.Clone()
		if err != nil {
			return errors.Join(ErrRender, fmt.Errorf("%s: %w", name, err))
		}
		// Buffered so a failing template writes nothing.
		var out bytes.Buffer
		if err := tmpl.Funcs(funcs).Execute(&out, data); err != nil {
			return errors.Join(ErrRender, fmt.Errorf("%s: %w", name, err))
		}
		_, err = out.WriteTo(w)
		return err
	}
}

type includeDepthKey struct{}

// renderFuncs binds include to the context of the current render.
// A user supplied include is left alone.
func (e *Engine) renderFuncs(ctx context.Context, depth int) map[string]any {
	if _, ok := e.funcs["include"]; ok {
		return nil
	}
	inner := context.WithValue(ctx, includeDepthKey{}, depth+1)
	return map[string]any{
		"include": func(name string, data any) (htmltemplate.HTML, error) {
			out, err := e.RenderString(inner, name, data)
			return htmltemplate.HTML(out), err
		},
	}
}

// RenderString renders name into a string.
func (e *Engine) RenderString(ctx context.Context, name string, data any) (string, error) {
	var sb strings.Builder
	if err := e.Render(ctx, &sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (e *Engine) load(name string) (*compiled, error) {
	if !e.reload {
		e.mu.RLock()
		t, ok := e.cache[name]
		e.mu.RUnlock()
		if ok {
			return t, nil
		}
	}

	file, err := e.resolve(name)
	if err != nil {
		return nil, err
	}
	src, err := fs.ReadFile(e.fsys, file)
	if err != nil {
		return nil, errors.Join(ErrNotFound, err)
	}

	t, err := e.parse(file, string(src))
	if err != nil {
		return nil, err
	}

	if !e.reload {
		e.mu.Lock()
		e.cache[name] = t
		e.mu.Unlock()
	}
	return t, nil
}

func (e *Engine) parse(file, src string) (*compiled, error) {
	funcs := map[string]any{
		// include renders another template inline. Rebound per render.
		"include": func(string, any) (htmltemplate.HTML, error) {
			return "", nil
		},
	}
	for k, v := range e.funcs {
		funcs[k] = v
	}

	if path.Ext(file) == ".md" {
		t, err := texttemplate.New(file).Funcs(funcs).Parse(src)
		if err != nil {
			return nil, errors.Join(ErrParse, err)
		}
		return &compiled{kind: kindMarkdown, text: t}, nil
	}

	t, err := htmltemplate.New(file).Funcs(funcs).Parse(src)
	if err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	return &compiled{kind: kindHTML, html: t}, nil
}

func (e *Engine) resolve(name string) (string, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" || !fs.ValidPath(name) {
		return "", errors.Join(ErrInvalidName, fmt.Errorf("%q", name))
	}

	for _, candidate := range []string{name, name + ".html", name + ".md"} {
		info, err := fs.Stat(e.fsys, candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.Join(ErrNotFound, fmt.Errorf("%q", name))
}
