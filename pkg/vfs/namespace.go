package vfs

import (
	"errors"
	"strings"
)

// The namespace has exactly three directories. Documents live one level
// below the two collections and cannot be entered.
const (
	Root     = "/"
	Blog     = "/blog"
	Projects = "/projects"
)

// FileExt is the extension shown after a document slug in listings.
const FileExt = ".MDX"

var (
	// ErrAccessDenied is returned when cd targets a path below a collection.
	ErrAccessDenied = errors.New("vfs: access denied")

	// ErrDirNotFound is returned when cd targets anything else.
	ErrDirNotFound = errors.New("vfs: directory not found")
)

// Dirs lists the directories in listing order.
var Dirs = []string{Root, Blog, Projects}

// IsDir reports whether p is one of the three directories.
func IsDir(p string) bool {
	return p == Root || p == Blog || p == Projects
}

// Normalize returns p when it is a valid working directory and Root
// otherwise. It is used for persisted values that may be stale.
func Normalize(p string) string {
	if IsDir(p) {
		return p
	}
	return Root
}

// ResolveCd resolves a cd argument against cwd. Only the three
// directories are reachable, by Unix or DOS spelling, in any case.
func ResolveCd(arg, cwd string) (string, error) {
	raw := strings.TrimSpace(arg)
	if raw == "" {
		return Root, nil
	}

	norm := collapseSlashes(strings.ReplaceAll(raw, "\\", "/"))

	switch strings.ToLower(norm) {
	case ".":
		return Normalize(cwd), nil
	case "..", "/", "c:", "c:/":
		return Root, nil
	case "blog", "/blog", "c:/blog":
		return Blog, nil
	case "projects", "/projects", "c:/projects":
		return Projects, nil
	}

	lower := strings.ToLower(norm)
	if strings.Contains(lower, "blog/") || strings.Contains(lower, "projects/") {
		return "", ErrAccessDenied
	}
	return "", ErrDirNotFound
}

// ResolvePath resolves a dir or type argument against cwd into one of
// "/", "/blog", "/projects", "/blog/<name>" or "/projects/<name>".
// Anything outside the two collections collapses to Root.
func ResolvePath(p, cwd string) string {
	p = strings.TrimSpace(p)
	switch p {
	case "", ".":
		return Normalize(cwd)
	case "..":
		return Root
	}

	if !IsAbs(p) {
		p = Normalize(cwd) + "/" + p
	}

	parts := strings.Split(strings.TrimPrefix(Clean(p), "/"), "/")
	var dir string
	switch strings.ToLower(parts[0]) {
	case "blog":
		dir = Blog
	case "projects":
		dir = Projects
	default:
		return Root
	}
	if len(parts) > 1 {
		return dir + "/" + parts[1]
	}
	return dir
}

// ParseFile splits a resolved path into its collection directory and
// document slug. A trailing .mdx or .md extension is dropped.
func ParseFile(p string) (dir, slug string, ok bool) {
	for _, d := range []string{Blog, Projects} {
		rest, found := strings.CutPrefix(p, d+"/")
		if !found || rest == "" {
			continue
		}
		ext := Ext(rest)
		if strings.EqualFold(ext, ".mdx") || strings.EqualFold(ext, ".md") {
			rest = rest[:len(rest)-len(ext)]
		}
		if rest == "" {
			return "", "", false
		}
		return d, rest, true
	}
	return "", "", false
}

// ToDOS renders p the way a DOS prompt shows it, e.g. C:\BLOG.
func ToDOS(p string) string {
	return `C:\` + strings.ToUpper(strings.ReplaceAll(strings.TrimPrefix(p, "/"), "/", `\`))
}

// DisplayName is the listing name of a document slug.
func DisplayName(slug string) string {
	return strings.ToUpper(slug) + FileExt
}

func collapseSlashes(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return s
}
