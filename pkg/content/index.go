package content

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Index holds the documents of both collections sorted by date
// descending, then title. It is safe for concurrent use and can be swapped
// in place when the source directory changes.
type Index struct {
	mu     sync.RWMutex
	docs   map[Type][]*Document
	bySlug map[Type]map[string]*Document
	about  *Document
}

// NewIndex builds an index from docs. Documents of an unknown type are
// rejected, as are two documents of one type sharing a slug.
func NewIndex(docs ...*Document) (*Index, error) {
	ix := &Index{
		docs:   make(map[Type][]*Document),
		bySlug: make(map[Type]map[string]*Document),
	}
	for _, t := range Types {
		ix.bySlug[t] = make(map[string]*Document)
	}

	for _, d := range docs {
		slugs, ok := ix.bySlug[d.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, d.Type)
		}
		if _, dup := slugs[d.Meta.Slug]; dup {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateSlug, d.Type, d.Meta.Slug)
		}
		slugs[d.Meta.Slug] = d
		ix.docs[d.Type] = append(ix.docs[d.Type], d)
	}

	col := collate.New(language.English, collate.IgnoreCase)
	for _, list := range ix.docs {
		sort.SliceStable(list, func(i, j int) bool {
			ti, tj := list[i].Meta.Time(), list[j].Meta.Time()
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return col.CompareString(list[i].Meta.Title, list[j].Meta.Title) < 0
		})
	}
	return ix, nil
}

// SetAbout attaches the document shown in the About window.
func (ix *Index) SetAbout(d *Document) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.about = d
}

// About returns the About document, if one was loaded.
func (ix *Index) About() (*Document, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.about, ix.about != nil
}

// Replace swaps in the contents of other.
func (ix *Index) Replace(other *Index) {
	other.mu.RLock()
	docs, bySlug, about := other.docs, other.bySlug, other.about
	other.mu.RUnlock()

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs, ix.bySlug, ix.about = docs, bySlug, about
}

// List returns the metadata of one collection in display order.
func (ix *Index) List(t Type) []Meta {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	list := ix.docs[t]
	out := make([]Meta, len(list))
	for i, d := range list {
		out[i] = d.Meta
	}
	return out
}

// Projects returns the project metadata in display order.
func (ix *Index) Projects() []Meta {
	return ix.List(TypeProject)
}

// Posts returns the post metadata in display order.
func (ix *Index) Posts() []Meta {
	return ix.List(TypePost)
}

// Slugs returns the slugs of one collection in display order.
func (ix *Index) Slugs(t Type) []string {
	metas := ix.List(t)
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = m.Slug
	}
	return out
}

// Len returns the number of documents in a collection.
func (ix *Index) Len(t Type) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs[t])
}

// GetBySlug returns a document by exact slug.
func (ix *Index) GetBySlug(t Type, slug string) (*Document, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if d, ok := ix.bySlug[t][slug]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, t, slug)
}

// Lookup is GetBySlug falling back to a case-insensitive match, for
// input typed at a DOS prompt.
func (ix *Index) Lookup(t Type, slug string) (*Document, error) {
	if d, err := ix.GetBySlug(t, slug); err == nil {
		return d, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, d := range ix.docs[t] {
		if strings.EqualFold(d.Meta.Slug, slug) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, t, slug)
}

// Search returns the documents of a collection matching q, in display
// order.
func (ix *Index) Search(t Type, q string) []Meta {
	out := make([]Meta, 0)
	for _, m := range ix.List(t) {
		if m.Matches(q) {
			out = append(out, m)
		}
	}
	return out
}
