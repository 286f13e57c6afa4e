package content

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Type discriminates the two document collections.
type Type string

const (
	// TypeProject documents live under projects/.
	TypeProject Type = "project"
	// TypePost documents live under blog/.
	TypePost Type = "post"
)

// Types lists the collections in explorer order.
var Types = []Type{TypeProject, TypePost}

var (
	// ErrNotFound is returned when no document has the requested slug.
	ErrNotFound = errors.New("document not found")

	// ErrUnknownType is returned for a collection name that is not recognized.
	ErrUnknownType = errors.New("unknown content type")

	// ErrDuplicateSlug is returned when two documents of one collection share a slug.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrMalformed is returned when a document body cannot be parsed.
	ErrMalformed = errors.New("malformed document")
)

// ParseType accepts the singular and plural collection names as well as
// "blog" for posts.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "project", "projects":
		return TypeProject, nil
	case "post", "posts", "blog":
		return TypePost, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Dir returns the source directory holding the collection.
func (t Type) Dir() string {
	if t == TypePost {
		return "blog"
	}
	return "projects"
}

// Label is the human readable collection name.
func (t Type) Label() string {
	if t == TypePost {
		return "Blog"
	}
	return "Projects"
}

// ReadingTime estimates how long a document takes to read.
type ReadingTime struct {
	Text    string `json:"text" yaml:"text"`
	Minutes int    `json:"minutes,omitempty" yaml:"minutes"`
	Words   int    `json:"words,omitempty" yaml:"words"`
}

// WordsPerMinute is the reading speed used for estimates.
const WordsPerMinute = 200

// EstimateReadingTime counts the words of body.
func EstimateReadingTime(body string) ReadingTime {
	words := len(strings.Fields(body))
	minutes := max(1, int(math.Ceil(float64(words)/WordsPerMinute)))
	return ReadingTime{
		Text:    fmt.Sprintf("%d min read", minutes),
		Minutes: minutes,
		Words:   words,
	}
}

// Meta is the front matter of a document.
type Meta struct {
	Title       string       `json:"title" yaml:"title"`
	Slug        string       `json:"slug" yaml:"slug"`
	Date        string       `json:"date,omitempty" yaml:"date"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags"`
	Summary     string       `json:"summary,omitempty" yaml:"summary"`
	Cover       string       `json:"cover,omitempty" yaml:"cover"`
	ReadingTime *ReadingTime `json:"readingTime,omitempty" yaml:"readingTime"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "2006/01/02"}

// Time parses Date. Documents without a valid date sort last.
func (m Meta) Time() time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, m.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Matches reports whether q occurs, ignoring case, in the title, summary,
// slug or any tag. An empty query matches everything.
func (m Meta) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	fields := append([]string{m.Title, m.Summary, m.Slug}, m.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Line is the one-line listing used by the shell, e.g. "- slug  (Title)".
func (m Meta) Line() string {
	return fmt.Sprintf("- %s  (%s)", m.Slug, m.Title)
}

// Document is a loaded and rendered document.
type Document struct {
	Type Type `json:"type"`
	Meta Meta `json:"meta"`
	// HTML is the rendered body for browsers.
	HTML string `json:"html,omitempty"`
	// Markdown is the body with components flattened to plain markdown,
	// used by terminal frontends.
	Markdown string `json:"-"`
	// Source is the raw body below the front matter.
	Source string `json:"-"`
	// RenderErr is set when the body could not be rendered.
	RenderErr error `json:"-"`
}
