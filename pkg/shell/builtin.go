package shell

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"retrodesk/pkg/content"
	"retrodesk/pkg/vfs"
)

// Command is one entry of the command table. Run receives the arguments
// after the command name and, inside a pipeline, the previous command's
// output. It runs with the session locked and may read and change the
// session fields directly.
type Command struct {
	Name string
	Run  func(ss *Session, args, stdin []string) ([]string, error)
	Help string
}

// builtins lists the commands available in every dialect.
var builtins = []Command{
	{"dir", cmdDir, "List the current or given directory"},
	{"ls", cmdDir, "List the current or given directory"},
	{"cd", cmdCd, "Change directory: cd [\\ | BLOG | PROJECTS | ..]"},
	{"type", cmdType, "Show a document: type <slug>.mdx"},
	{"cat", cmdType, "Show a document: cat <slug>.mdx"},
	{"echo", cmdEcho, "Print arguments"},
	{"date", cmdDate, "Show the current date"},
	{"time", cmdTime, "Show the current time"},
	{"ver", cmdVer, "Show the version"},
	{"cls", cmdClear, "Clear the screen"},
	{"clear", cmdClear, "Clear the screen"},
	{"help", cmdHelp, "Show help: help [command]"},
	{"open", cmdOpen, "Open a document: open <project|post> <slug>"},
	{"projects", cmdProjects, "List projects"},
	{"blog", cmdBlog, "List blog posts"},
	{"history", cmdHistory, "Show command history"},
	{"pwd", cmdPwd, "Print the working directory"},
}

// The classic command set shown on the first help line, and the aliases
// that are not worth listing separately.
var (
	coreDOS  = []string{"dir", "cd", "type", "echo", "date", "time", "ver", "cls", "help", "open"}
	coreUnix = []string{"ls", "cd", "cat", "echo", "date", "time", "ver", "clear", "help", "open"}
	coreSet  = map[string]bool{}
)

func init() {
	for _, name := range append(coreDOS, coreUnix...) {
		coreSet[name] = true
	}
}

func isCore(name string) bool {
	return coreSet[name]
}

func sortStrings(s []string) {
	sort.Strings(s)
}

func cmdDir(ss *Session, args, _ []string) ([]string, error) {
	target := ""
	for _, a := range args {
		if ss.sh.dialect == Unix && strings.HasPrefix(a, "-") {
			continue
		}
		target = a
		break
	}
	if ss.sh.dialect == Unix {
		return ss.listUnix(target)
	}
	return ss.listDOS(target), nil
}

func cmdCd(ss *Session, args, _ []string) ([]string, error) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	next, err := vfs.ResolveCd(arg, ss.cwd)
	switch {
	case errors.Is(err, vfs.ErrAccessDenied):
		return nil, errors.New("Access denied")
	case err != nil:
		return nil, errors.New("Directory not found")
	}
	ss.cwd = next
	return nil, nil
}

func cmdType(ss *Session, args, _ []string) ([]string, error) {
	if len(args) == 0 {
		if ss.sh.dialect == Unix {
			return nil, errors.New("usage: cat <file>")
		}
		return nil, errors.New("The syntax of the command is incorrect.")
	}

	var out []string
	for _, a := range args {
		doc, ok := ss.resolveDoc(a)
		if !ok {
			out = append(out, "File not found - "+a)
			continue
		}
		out = append(out, doc.Meta.Line())
	}
	return out, nil
}

// resolveDoc maps a path argument to an indexed document.
func (ss *Session) resolveDoc(arg string) (*content.Document, bool) {
	dir, slug, ok := vfs.ParseFile(vfs.ResolvePath(arg, ss.cwd))
	if !ok || ss.sh.catalog == nil {
		return nil, false
	}
	t, _ := typeForDir(dir)
	doc, err := ss.sh.catalog.Lookup(t, slug)
	if err != nil {
		return nil, false
	}
	return doc, true
}

func typeForDir(dir string) (content.Type, bool) {
	switch dir {
	case vfs.Blog:
		return content.TypePost, true
	case vfs.Projects:
		return content.TypeProject, true
	}
	return "", false
}

func cmdEcho(_ *Session, args, _ []string) ([]string, error) {
	return []string{strings.Join(args, " ")}, nil
}

func cmdDate(ss *Session, _, _ []string) ([]string, error) {
	return []string{"Current date is " + ss.sh.now().Format("01-02-2006")}, nil
}

func cmdTime(ss *Session, _, _ []string) ([]string, error) {
	return []string{"Current time is " + ss.sh.now().Format("03:04:05 PM")}, nil
}

func cmdVer(_ *Session, _, _ []string) ([]string, error) {
	return []string{"Microsoft Windows 95 [Version 4.00.950]"}, nil
}

func cmdClear(_ *Session, _, _ []string) ([]string, error) {
	return nil, ErrClear
}

func cmdHelp(ss *Session, args, _ []string) ([]string, error) {
	if len(args) > 0 {
		name := strings.ToLower(args[0])
		c, ok := ss.sh.commands[name]
		if !ok || c.Help == "" {
			return nil, fmt.Errorf("No help for %s", args[0])
		}
		return []string{strings.ToUpper(c.Name) + "  " + c.Help}, nil
	}

	core := coreDOS
	if ss.sh.dialect == Unix {
		core = coreUnix
	}
	names := make([]string, len(core))
	for i, n := range core {
		names[i] = strings.ToUpper(n)
	}

	out := []string{"Supported commands:", "  " + strings.Join(names, "   ")}
	if len(ss.sh.extended) > 0 {
		out = append(out, "Extended:")
		for _, n := range ss.sh.extended {
			out = append(out, "  "+strings.ToUpper(n))
		}
	}
	out = append(out, "", "Use DIR then OPEN <slug> inside BLOG or PROJECTS.")
	if ss.sh.dialect == Unix {
		out = append(out, "Pipe output through grep, head, tail, sort, uniq and wc with |.")
	}
	return out, nil
}

const openUsage = "Usage: open <project|post> <slug>"

func cmdOpen(ss *Session, args, _ []string) ([]string, error) {
	var (
		t    content.Type
		slug string
	)
	switch {
	case len(args) == 1:
		dt, ok := typeForDir(ss.cwd)
		if !ok {
			return nil, errors.New(openUsage)
		}
		t, slug = dt, args[0]
	case len(args) >= 2:
		pt, err := content.ParseType(args[0])
		if err != nil {
			return nil, errors.New("Type must be 'project' or 'post'.")
		}
		t, slug = pt, args[1]
	default:
		return nil, errors.New(openUsage)
	}

	// Accept the listing name as well as the bare slug.
	if ext := vfs.Ext(slug); strings.EqualFold(ext, ".mdx") || strings.EqualFold(ext, ".md") {
		slug = slug[:len(slug)-len(ext)]
	}

	if ss.sh.host == nil {
		return nil, errors.New("Nothing can be opened from this terminal.")
	}
	if ss.sh.catalog != nil {
		doc, err := ss.sh.catalog.Lookup(t, slug)
		if err != nil {
			return nil, errors.New("File not found - " + slug)
		}
		slug = doc.Meta.Slug
	}
	if err := ss.sh.host.OpenDoc(t, slug); err != nil {
		return nil, fmt.Errorf("Cannot open %s: %v", slug, err)
	}
	return []string{fmt.Sprintf("Opening %s: %s", t, slug)}, nil
}

func cmdProjects(ss *Session, _, _ []string) ([]string, error) {
	return ss.listing(content.TypeProject, "No projects yet."), nil
}

func cmdBlog(ss *Session, _, _ []string) ([]string, error) {
	return ss.listing(content.TypePost, "No posts yet."), nil
}

func (ss *Session) listing(t content.Type, empty string) []string {
	var metas []content.Meta
	if ss.sh.catalog != nil {
		metas = ss.sh.catalog.List(t)
	}
	if len(metas) == 0 {
		return []string{empty}
	}
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = m.Line()
	}
	return out
}

func cmdHistory(ss *Session, _, _ []string) ([]string, error) {
	out := make([]string, 0, len(ss.history))
	for i := len(ss.history) - 1; i >= 0; i-- {
		out = append(out, fmt.Sprintf("%5d  %s", len(ss.history)-i, ss.history[i]))
	}
	return out, nil
}

func cmdPwd(ss *Session, _, _ []string) ([]string, error) {
	if ss.sh.dialect == Unix {
		return []string{ss.cwd}, nil
	}
	return []string{vfs.ToDOS(ss.cwd)}, nil
}
