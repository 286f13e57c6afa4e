package shell

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"retrodesk/pkg/content"
	"retrodesk/pkg/vfs"
)

// BytesFree is the free space every DOS listing reports.
const BytesFree = 12582912

const attrWidth = 17

// PseudoSize is the size shown for a listed file. It only depends on the
// length of the listing name.
func PseudoSize(name string) int64 {
	return int64((len(name)*321+1024)%32768) + 512
}

type dirEntry struct {
	name  string
	dir   bool
	size  int64
	slug  string
	title string
}

// entries returns the listing of a directory, or false when target is
// not a directory.
func (ss *Session) entries(target string) ([]dirEntry, bool) {
	switch target {
	case vfs.Root:
		return []dirEntry{
			{name: "blog", dir: true},
			{name: "projects", dir: true},
		}, true
	case vfs.Blog, vfs.Projects:
		t, _ := typeForDir(target)
		var metas []content.Meta
		if ss.sh.catalog != nil {
			metas = ss.sh.catalog.List(t)
		}
		out := make([]dirEntry, len(metas))
		for i, m := range metas {
			name := vfs.DisplayName(m.Slug)
			out[i] = dirEntry{name: name, size: PseudoSize(name), slug: m.Slug, title: m.Title}
		}
		return out, true
	}
	return nil, false
}

// listDOS renders a COMMAND.COM style listing.
func (ss *Session) listDOS(arg string) []string {
	target := vfs.ResolvePath(arg, ss.cwd)
	list, ok := ss.entries(target)
	if !ok {
		return []string{"File Not Found"}
	}

	stamp := ss.sh.now().Format("01-02-2006  03:04 PM")
	line := func(attr, name string) string {
		return fmt.Sprintf("%s  %*s  %s", stamp, attrWidth, attr, name)
	}

	out := []string{" Directory of C: \\" + strings.TrimPrefix(vfs.ToDOS(target), `C:\`), ""}
	out = append(out, line("<DIR>", "."), line("<DIR>", ".."))
	dirs, files := 2, 0
	var total int64
	for _, e := range list {
		if e.dir {
			dirs++
			out = append(out, line("<DIR>", strings.ToUpper(e.name)))
			continue
		}
		files++
		total += e.size
		out = append(out, line(humanize.Comma(e.size), e.name))
	}

	summary := fmt.Sprintf("%6d File(s)", files)
	if files > 0 {
		summary += "  " + humanize.Comma(total) + " bytes"
	}
	return append(out, "",
		summary,
		fmt.Sprintf("%6d Dir(s)  %s bytes free", dirs, humanize.Comma(BytesFree)),
	)
}

// listUnix prints bare names, one per line.
func (ss *Session) listUnix(arg string) ([]string, error) {
	target := vfs.ResolvePath(arg, ss.cwd)
	list, ok := ss.entries(target)
	if !ok {
		if _, found := ss.resolveDoc(arg); found {
			return []string{arg}, nil
		}
		return nil, fmt.Errorf("ls: cannot access '%s': No such file or directory", arg)
	}

	out := make([]string, 0, len(list))
	for _, e := range list {
		if e.dir {
			out = append(out, e.name+"/")
			continue
		}
		out = append(out, e.slug)
	}
	return out, nil
}
