package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed sample
var sampleFS embed.FS

// SampleFS returns the content shipped with the binary, used when no
// content directory is configured.
func SampleFS() fs.FS {
	sub, err := fs.Sub(sampleFS, "sample")
	if err != nil {
		panic(err)
	}
	return sub
}

// AboutFile is the optional document shown in the About window.
const AboutFile = "about.md"

// Loader reads documents from a filesystem laid out as projects/*.md and
// blog/*.md, .mdx accepted as well.
type Loader struct {
	renderer *Renderer
	logger   *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for skipped files.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// WithRenderer sets the renderer used for bodies.
func WithRenderer(r *Renderer) LoaderOption {
	return func(ld *Loader) {
		ld.renderer = r
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{
		renderer: NewRenderer(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load is NewLoader(opts...).Load(fsys).
func Load(fsys fs.FS, opts ...LoaderOption) (*Index, error) {
	return NewLoader(opts...).Load(fsys)
}

// Load reads both collections and builds an index. A document whose body
// fails to render is kept with RenderErr set, and a second document
// claiming a slug already taken in its collection is skipped with a
// warning. Unreadable files fail the load.
func (ld *Loader) Load(fsys fs.FS) (*Index, error) {
	var docs []*Document
	for _, t := range Types {
		names, err := ld.sources(fsys, t.Dir())
		if err != nil {
			return nil, err
		}
		claimed := make(map[string]string)
		for _, name := range names {
			doc, err := ld.loadFile(fsys, name, t)
			if err != nil {
				return nil, err
			}
			if first, dup := claimed[doc.Meta.Slug]; dup {
				ld.logger.Warn("duplicate slug, document skipped",
					zap.String("file", name),
					zap.String("slug", doc.Meta.Slug),
					zap.String("kept", first))
				continue
			}
			claimed[doc.Meta.Slug] = name
			docs = append(docs, doc)
		}
	}

	ix, err := NewIndex(docs...)
	if err != nil {
		return nil, err
	}

	about, err := ld.loadFile(fsys, AboutFile, "")
	switch {
	case err == nil:
		ix.SetAbout(about)
	case !errors.Is(err, fs.ErrNotExist):
		ld.logger.Warn("about document skipped", zap.Error(err))
	}

	ld.logger.Debug("content loaded",
		zap.Int("projects", ix.Len(TypeProject)),
		zap.Int("posts", ix.Len(TypePost)))
	return ix, nil
}

func (ld *Loader) sources(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		switch path.Ext(e.Name()) {
		case ".md", ".mdx":
			names = append(names, path.Join(dir, e.Name()))
		}
	}
	return names, nil
}

func (ld *Loader) loadFile(fsys fs.FS, name string, t Type) (*Document, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta)
	if err != nil {
		ld.logger.Warn("front matter not parsed, treating as plain markdown",
			zap.String("file", name), zap.Error(err))
		body = raw
		meta = Meta{}
	}

	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	if meta.Slug == "" {
		meta.Slug = base
	}
	if meta.Title == "" {
		title := strings.NewReplacer("-", " ", "_", " ").Replace(meta.Slug)
		meta.Title = cases.Title(language.English).String(title)
	}
	if meta.ReadingTime == nil {
		rt := EstimateReadingTime(string(body))
		meta.ReadingTime = &rt
	}

	doc := &Document{Type: t, Meta: meta, Source: string(body)}
	ld.render(doc, name)
	return doc, nil
}

func (ld *Loader) render(doc *Document, name string) {
	html, err := ld.renderer.HTML(doc.Source)
	if err == nil {
		doc.Markdown, err = ld.renderer.Markdown(doc.Source)
	}
	if err != nil {
		ld.logger.Warn("document did not render", zap.String("file", name), zap.Error(err))
		doc.RenderErr = err
		return
	}
	doc.HTML = html
}
