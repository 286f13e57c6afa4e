package shell

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"retrodesk/pkg/content"
	"retrodesk/pkg/vfs"
)

var fixedNow = time.Date(2025, 3, 14, 15, 4, 5, 0, time.UTC)

func testIndex(t *testing.T) *content.Index {
	t.Helper()
	ix, err := content.NewIndex(
		&content.Document{Type: content.TypePost, Meta: content.Meta{Title: "Hello World", Slug: "hello-world", Date: "2025-01-05"}},
		&content.Document{Type: content.TypePost, Meta: content.Meta{Title: "Notes on DOS", Slug: "notes-on-dos", Date: "2024-08-09"}},
		&content.Document{Type: content.TypeProject, Meta: content.Meta{Title: "RetroDesk", Slug: "retrodesk", Date: "2025-03-14"}},
		&content.Document{Type: content.TypeProject, Meta: content.Meta{Title: "Tiny Shell", Slug: "tiny-shell", Date: "2024-11-02"}},
	)
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}
	return ix
}

type openCall struct {
	Type content.Type
	Slug string
}

type recordingHost struct {
	calls []openCall
	err   error
}

func (h *recordingHost) OpenDoc(t content.Type, slug string) error {
	h.calls = append(h.calls, openCall{t, slug})
	return h.err
}

func newSession(t *testing.T, d Dialect, host Host) *Session {
	t.Helper()
	sh := New(Config{
		Dialect: d,
		Catalog: testIndex(t),
		Host:    host,
		Now:     func() time.Time { return fixedNow },
	})
	return sh.NewSession(State{})
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"", DOS, false},
		{"DOS", DOS, false},
		{"unix", Unix, false},
		{"sh", Unix, false},
		{"cmd", DOS, true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDialect(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDialect(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestPseudoSize(t *testing.T) {
	tests := []struct {
		name string
		want int64
	}{
		{"HELLO-WORLD.MDX", 6351},
		{"NOTES-ON-DOS.MDX", 6672},
		{"", 1536},
	}
	for _, tt := range tests {
		if got := PseudoSize(tt.name); got != tt.want {
			t.Errorf("PseudoSize(%q): expected %d, got %d", tt.name, tt.want, got)
		}
		if PseudoSize(tt.name) != PseudoSize(tt.name) {
			t.Errorf("PseudoSize(%q) is not deterministic", tt.name)
		}
	}
}

func TestBuiltinTable(t *testing.T) {
	sh := New(Config{})
	for _, name := range coreDOS {
		if _, ok := sh.Lookup(name); !ok {
			t.Errorf("expected builtin %s to be registered", name)
		}
	}
	if _, ok := sh.Lookup("grep"); ok {
		t.Error("expected grep to be unavailable in the DOS dialect")
	}
	if _, ok := New(Config{Dialect: Unix}).Lookup("grep"); !ok {
		t.Error("expected grep to be available in the Unix dialect")
	}
}

func pad(attr string) string {
	return strings.Repeat(" ", attrWidth-len(attr)) + attr
}

func TestDirDOS(t *testing.T) {
	ss := newSession(t, DOS, nil)
	stamp := "03-14-2025  03:04 PM  "

	res := ss.Exec("cd blog")
	if len(res.Lines) != 0 {
		t.Fatalf("expected no output from cd, got %q", res.Lines)
	}

	got := ss.Exec("DIR").Lines
	want := []string{
		` Directory of C: \BLOG`,
		"",
		stamp + pad("<DIR>") + "  .",
		stamp + pad("<DIR>") + "  ..",
		stamp + pad("6,351") + "  HELLO-WORLD.MDX",
		stamp + pad("6,672") + "  NOTES-ON-DOS.MDX",
		"",
		"     2 File(s)  13,023 bytes",
		"     2 Dir(s)  12,582,912 bytes free",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dir /blog mismatch (-want +got):\n%s", diff)
	}

	got = ss.Exec(`dir C:\`).Lines
	want = []string{
		` Directory of C: \`,
		"",
		stamp + pad("<DIR>") + "  .",
		stamp + pad("<DIR>") + "  ..",
		stamp + pad("<DIR>") + "  BLOG",
		stamp + pad("<DIR>") + "  PROJECTS",
		"",
		"     0 File(s)",
		"     4 Dir(s)  12,582,912 bytes free",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dir root mismatch (-want +got):\n%s", diff)
	}

	got = ss.Exec("dir hello-world.mdx").Lines
	if diff := cmp.Diff([]string{"File Not Found"}, got); diff != "" {
		t.Errorf("dir file mismatch (-want +got):\n%s", diff)
	}
}

func TestListingMatchesIndex(t *testing.T) {
	ix := testIndex(t)
	for _, d := range []Dialect{DOS, Unix} {
		sh := New(Config{Dialect: d, Catalog: ix, Now: func() time.Time { return fixedNow }})
		for _, dir := range []string{vfs.Blog, vfs.Projects} {
			ss := sh.NewSession(State{Cwd: dir})
			ct, _ := typeForDir(dir)

			var listed []string
			for _, line := range ss.Exec("ls").Lines {
				if d == Unix {
					listed = append(listed, line)
					continue
				}
				if name, ok := strings.CutSuffix(line, ".MDX"); ok {
					listed = append(listed, strings.ToLower(name[strings.LastIndex(name, " ")+1:]))
				}
			}
			if diff := cmp.Diff(ix.Slugs(ct), listed); diff != "" {
				t.Errorf("%v listing of %s mismatch (-want +got):\n%s", d, dir, diff)
			}
		}
	}
}

func TestCd(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		arg     string
		wantCwd string
		wantOut []string
	}{
		{"blog", "/", "cd blog", "/blog", nil},
		{"dos spelling", "/", `cd C:\PROJECTS`, "/projects", nil},
		{"absolute", "/projects", "cd /blog", "/blog", nil},
		{"parent", "/blog", "cd ..", "/", nil},
		{"dot", "/blog", "cd .", "/blog", nil},
		{"bare cd goes home", "/blog", "cd", "/", nil},
		{"trailing slash is denied", "/", "cd blog/", "/", []string{"Access denied"}},
		{"nested is denied", "/", "cd blog/hello-world", "/", []string{"Access denied"}},
		{"unknown", "/blog", "cd windows", "/blog", []string{"Directory not found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := New(Config{}).NewSession(State{Cwd: tt.from})
			res := ss.Exec(tt.arg)
			if ss.Cwd() != tt.wantCwd {
				t.Errorf("expected cwd %s, got %s", tt.wantCwd, ss.Cwd())
			}
			if diff := cmp.Diff(tt.wantOut, res.Lines, cmpEmpty); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

var cmpEmpty = cmp.Comparer(func(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return cmp.Equal(a, b)
})

func TestPrompt(t *testing.T) {
	dos := New(Config{}).NewSession(State{Cwd: "/blog"})
	if got := dos.Prompt(); got != `C:\BLOG>` {
		t.Errorf("expected C:\\BLOG>, got %s", got)
	}
	unix := New(Config{Dialect: Unix}).NewSession(State{Cwd: "/blog"})
	if got := unix.Prompt(); got != "guest@retrodesk:/blog$" {
		t.Errorf("expected guest@retrodesk:/blog$, got %s", got)
	}
	res := dos.Exec("cd ..")
	if res.Prompt != `C:\BLOG>` {
		t.Errorf("expected result prompt to be the one the line was typed at, got %s", res.Prompt)
	}
	if got := dos.Prompt(); got != `C:\>` {
		t.Errorf("expected C:\\>, got %s", got)
	}
}

func TestSimpleCommands(t *testing.T) {
	tests := []struct {
		line string
		cwd  string
		want []string
	}{
		{"echo hello   world", "/", []string{"hello world"}},
		{`echo "two  spaces"`, "/", []string{"two  spaces"}},
		{"echo a|b", "/", []string{"a|b"}},
		{"echo #tag", "/", []string{"#tag"}},
		{`echo "#x" '#y' a#b`, "/", []string{"#x #y a#b"}},
		{`type #notes C:\BLOG\#x`, "/", []string{"File not found - #notes", `File not found - C:\BLOG\#x`}},
		{"date", "/", []string{"Current date is 03-14-2025"}},
		{"time", "/", []string{"Current time is 03:04:05 PM"}},
		{"VER", "/", []string{"Microsoft Windows 95 [Version 4.00.950]"}},
		{"type hello-world.mdx", "/blog", []string{"- hello-world  (Hello World)"}},
		{`type \BLOG\HELLO-WORLD.MDX`, "/", []string{"- hello-world  (Hello World)"}},
		{"type projects/retrodesk missing.mdx", "/", []string{"- retrodesk  (RetroDesk)", "File not found - missing.mdx"}},
		{"type nope", "/blog", []string{"File not found - nope"}},
		{"projects", "/", []string{"- retrodesk  (RetroDesk)", "- tiny-shell  (Tiny Shell)"}},
		{"blog", "/", []string{"- hello-world  (Hello World)", "- notes-on-dos  (Notes on DOS)"}},
		{"pwd", "/projects", []string{`C:\PROJECTS`}},
		{"format c:", "/", []string{"Bad command or file name"}},
		{`echo "open`, "/", []string{"syntax error: unterminated quoted string"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			sh := New(Config{Catalog: testIndex(t), Now: func() time.Time { return fixedNow }})
			got := sh.NewSession(State{Cwd: tt.cwd}).Exec(tt.line).Lines
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmptyCatalog(t *testing.T) {
	ix, err := content.NewIndex()
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}
	ss := New(Config{Catalog: ix}).NewSession(State{})
	if got := ss.Exec("projects").Lines; !cmp.Equal(got, []string{"No projects yet."}) {
		t.Errorf("expected empty projects message, got %q", got)
	}
	if got := ss.Exec("blog").Lines; !cmp.Equal(got, []string{"No posts yet."}) {
		t.Errorf("expected empty posts message, got %q", got)
	}
}

func TestClear(t *testing.T) {
	ss := New(Config{}).NewSession(State{})
	for _, line := range []string{"cls", "CLEAR"} {
		res := ss.Exec(line)
		if !res.Clear {
			t.Errorf("expected %s to clear the screen", line)
		}
		if len(res.Lines) != 0 {
			t.Errorf("expected no output from %s, got %q", line, res.Lines)
		}
	}
}

func TestHelp(t *testing.T) {
	ss := New(Config{
		Commands: []Command{{Name: "about", Run: cmdVer, Help: "About this desktop"}},
	}).NewSession(State{})

	got := ss.Exec("help").Lines
	if got[0] != "Supported commands:" {
		t.Errorf("unexpected first line %q", got[0])
	}
	if got[1] != "  DIR   CD   TYPE   ECHO   DATE   TIME   VER   CLS   HELP   OPEN" {
		t.Errorf("unexpected command line %q", got[1])
	}
	joined := strings.Join(got, "\n")
	for _, want := range []string{"Extended:", "  ABOUT", "  HISTORY", "  PROJECTS"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
	if strings.Contains(joined, "  LS\n") {
		t.Error("expected aliases to stay out of the extended list")
	}
	if got[len(got)-1] != "Use DIR then OPEN <slug> inside BLOG or PROJECTS." {
		t.Errorf("unexpected last line %q", got[len(got)-1])
	}

	if got := ss.Exec("help about").Lines; !cmp.Equal(got, []string{"ABOUT  About this desktop"}) {
		t.Errorf("unexpected command help %q", got)
	}
	if got := ss.Exec("help nope").Lines; !cmp.Equal(got, []string{"No help for nope"}) {
		t.Errorf("unexpected missing help %q", got)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name      string
		cwd       string
		line      string
		want      string
		wantCalls []openCall
	}{
		{"inferred post", "/blog", "open hello-world", "Opening post: hello-world", []openCall{{content.TypePost, "hello-world"}}},
		{"listing name", "/blog", "open HELLO-WORLD.MDX", "Opening post: hello-world", []openCall{{content.TypePost, "hello-world"}}},
		{"explicit project", "/", "open project retrodesk", "Opening project: retrodesk", []openCall{{content.TypeProject, "retrodesk"}}},
		{"bare", "/blog", "open", openUsage, nil},
		{"slug at root", "/", "open retrodesk", openUsage, nil},
		{"bad type", "/", "open thing retrodesk", "Type must be 'project' or 'post'.", nil},
		{"missing slug", "/", "open post missing", "File not found - missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &recordingHost{}
			ss := newSession(t, DOS, host)
			ss.Exec("cd " + tt.cwd)

			got := ss.Exec(tt.line).Lines
			if diff := cmp.Diff([]string{tt.want}, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCalls, host.calls); diff != "" {
				t.Errorf("host calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenHostFailure(t *testing.T) {
	ss := newSession(t, DOS, &recordingHost{err: errors.New("too many windows")})
	got := ss.Exec("open post hello-world").Lines
	if diff := cmp.Diff([]string{"Cannot open hello-world: too many windows"}, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	noHost := newSession(t, DOS, nil)
	if got := noHost.Exec("open post hello-world").Lines; len(got) != 1 || !strings.HasPrefix(got[0], "Nothing can be opened") {
		t.Errorf("unexpected output without host %q", got)
	}
}

func TestUnixPipelines(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"ls", []string{"hello-world", "notes-on-dos"}},
		{"ls / ", []string{"blog/", "projects/"}},
		{"ls | grep -i DOS", []string{"notes-on-dos"}},
		{"ls | grep -v hello", []string{"notes-on-dos"}},
		{"ls | grep c++", nil},
		{"ls /projects | sort -r | head -n 1", []string{"tiny-shell"}},
		{"ls /projects | tail -n1", []string{"tiny-shell"}},
		{"ls | wc -l", []string{"      2"}},
		{"echo a b | wc", []string{"      1       2       4"}},
		{"blog | uniq -c", []string{"      1 - hello-world  (Hello World)", "      1 - notes-on-dos  (Notes on DOS)"}},
		{`echo "a|b" | grep a`, []string{"a|b"}},
		{"echo #go tui | grep #go", []string{"#go tui"}},
		{`echo "say \"#hi\"" #there`, []string{`say "#hi" #there`}},
		{"ls nope", []string{"ls: cannot access 'nope': No such file or directory"}},
		{"ls hello-world", []string{"hello-world"}},
		{"DIR", []string{"DIR: command not found"}},
		{"ls | nosuch", []string{"nosuch: command not found"}},
		{"ls |", []string{"syntax error near unexpected token `|'"}},
		{"head -n -1", []string{"head: invalid number of lines: -1"}},
		{"grep", []string{"usage: grep [-i] [-v] PATTERN"}},
		{"pwd", []string{"/blog"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ss := newSession(t, Unix, nil)
			ss.Exec("cd /blog")
			got := ss.Exec(tt.line).Lines
			if diff := cmp.Diff(tt.want, got, cmpEmpty); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUniqCollapsesAdjacent(t *testing.T) {
	got, err := cmdUniq(nil, []string{"-c"}, []string{"a", "a", "b", "a"})
	if err != nil {
		t.Fatalf("uniq failed: %v", err)
	}
	want := []string{"      2 a", "      1 b", "      1 a"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("uniq mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteCycles(t *testing.T) {
	ss := New(Config{}).NewSession(State{})

	got := []string{}
	line := "c"
	for i := 0; i < 5; i++ {
		var ok bool
		line, ok = ss.Complete(line)
		if !ok {
			t.Fatalf("expected completion at step %d", i)
		}
		got = append(got, line)
	}
	want := []string{"cat ", "cd ", "clear ", "cls ", "cat "}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cycle mismatch (-want +got):\n%s", diff)
	}

	if _, ok := ss.Complete("zz"); ok {
		t.Error("expected no completion for zz")
	}
	if _, ok := ss.Complete("cd bl"); ok {
		t.Error("expected no completion past the first token")
	}
	if got, _ := ss.Complete("HIS"); got != "history " {
		t.Errorf("expected DOS completion to ignore case, got %q", got)
	}
}

func TestCompleteResetsOnExec(t *testing.T) {
	ss := New(Config{}).NewSession(State{})
	ss.Complete("c")
	ss.Complete("cat ")
	ss.Exec("ver")
	if got, _ := ss.Complete("c"); got != "cat " {
		t.Errorf("expected cycle to restart after Enter, got %q", got)
	}
}

func TestCompleteIncludesExtraCommands(t *testing.T) {
	sh := New(Config{Dialect: Unix, Commands: []Command{{Name: "hello", Run: cmdVer}}})
	want := []string{"head", "hello", "help", "history"}
	if diff := cmp.Diff(want, sh.Candidates("h")); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryNavigation(t *testing.T) {
	ss := New(Config{}).NewSession(State{})
	if _, ok := ss.HistoryUp(); ok {
		t.Error("expected no history on a new session")
	}

	for _, line := range []string{"dir", "  ", "cd blog", "ver"} {
		ss.Exec(line)
	}
	if diff := cmp.Diff([]string{"ver", "cd blog", "dir"}, ss.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	var ups []string
	for i := 0; i < 4; i++ {
		line, ok := ss.HistoryUp()
		if !ok {
			t.Fatalf("expected history entry at step %d", i)
		}
		ups = append(ups, line)
	}
	if diff := cmp.Diff([]string{"ver", "cd blog", "dir", "dir"}, ups); diff != "" {
		t.Errorf("up mismatch (-want +got):\n%s", diff)
	}

	downs := []string{ss.HistoryDown(), ss.HistoryDown(), ss.HistoryDown(), ss.HistoryDown()}
	if diff := cmp.Diff([]string{"cd blog", "ver", "", ""}, downs); diff != "" {
		t.Errorf("down mismatch (-want +got):\n%s", diff)
	}

	got := ss.Exec("history").Lines
	want := []string{"    1  dir", "    2  cd blog", "    3  ver", "    4  history"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history command mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryCap(t *testing.T) {
	ss := New(Config{}).NewSession(State{})
	for i := 0; i < MaxHistory+5; i++ {
		ss.Exec(fmt.Sprintf("echo %d", i))
	}
	h := ss.History()
	if len(h) != MaxHistory {
		t.Fatalf("expected %d entries, got %d", MaxHistory, len(h))
	}
	if h[0] != fmt.Sprintf("echo %d", MaxHistory+4) {
		t.Errorf("expected newest entry first, got %s", h[0])
	}
}

func TestSessionState(t *testing.T) {
	sh := New(Config{})
	long := make([]string, MaxHistory+10)
	for i := range long {
		long[i] = "ver"
	}

	ss := sh.NewSession(State{Cwd: "/etc", History: long})
	if ss.Cwd() != vfs.Root {
		t.Errorf("expected invalid cwd to fall back to root, got %s", ss.Cwd())
	}
	if len(ss.History()) != MaxHistory {
		t.Errorf("expected restored history to be capped, got %d", len(ss.History()))
	}

	ss = sh.NewSession(State{Cwd: "/projects", History: []string{"dir"}})
	ss.Exec("cd ..")
	want := State{Cwd: "/", History: []string{"cd ..", "dir"}}
	if diff := cmp.Diff(want, ss.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestBanner(t *testing.T) {
	if got := New(Config{}).Banner()[0]; got != "Microsoft(R) Win95 DOS Shell [Portfolio Edition]" {
		t.Errorf("unexpected DOS banner %q", got)
	}
	if got := New(Config{Dialect: Unix}).Banner(); len(got) != 2 {
		t.Errorf("unexpected Unix banner %q", got)
	}
}
