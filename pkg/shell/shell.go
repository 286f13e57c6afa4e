package shell

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"retrodesk/pkg/content"
	"retrodesk/pkg/vfs"
)

// Dialect selects prompt, listing style and error messages.
type Dialect int

const (
	DOS Dialect = iota
	Unix
)

// String returns the configuration name of the dialect.
func (d Dialect) String() string {
	if d == Unix {
		return "unix"
	}
	return "dos"
}

// ParseDialect parses "dos" or "unix". Empty input means DOS.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dos":
		return DOS, nil
	case "unix", "sh":
		return Unix, nil
	}
	return DOS, fmt.Errorf("unknown shell dialect %q", s)
}

// MaxHistory is the number of lines a session remembers.
const MaxHistory = 100

// Catalog is the read side of the content index the shell needs.
// *content.Index satisfies it.
type Catalog interface {
	List(t content.Type) []content.Meta
	Lookup(t content.Type, slug string) (*content.Document, error)
}

// Host opens documents on behalf of the open command.
type Host interface {
	OpenDoc(t content.Type, slug string) error
}

// HostFunc adapts a function to Host.
type HostFunc func(t content.Type, slug string) error

// OpenDoc implements Host.
func (f HostFunc) OpenDoc(t content.Type, slug string) error {
	return f(t, slug)
}

// Config configures a Shell.
type Config struct {
	Dialect Dialect
	Catalog Catalog
	// Host may be nil, in which case open reports that nothing can be
	// opened.
	Host Host
	// Commands are registered after the built-ins and shadow them.
	Commands []Command
	// Now defaults to time.Now.
	Now func() time.Time
}

// Shell is the immutable part of the interpreter shared by sessions.
type Shell struct {
	dialect  Dialect
	catalog  Catalog
	host     Host
	now      func() time.Time
	commands map[string]Command
	extended []string
	names    []string
}

// ErrClear is returned by a command to ask the frontend to clear the
// screen.
var ErrClear = errors.New("shell: clear screen")

// New creates a Shell.
func New(cfg Config) *Shell {
	s := &Shell{
		dialect:  cfg.Dialect,
		catalog:  cfg.Catalog,
		host:     cfg.Host,
		now:      cfg.Now,
		commands: make(map[string]Command),
	}
	if s.now == nil {
		s.now = time.Now
	}

	for _, c := range builtins {
		s.commands[c.Name] = c
	}
	if s.dialect == Unix {
		for _, c := range filters {
			s.commands[c.Name] = c
		}
	}
	for _, c := range cfg.Commands {
		s.commands[strings.ToLower(c.Name)] = c
	}

	for name := range s.commands {
		s.names = append(s.names, name)
		if !isCore(name) {
			s.extended = append(s.extended, name)
		}
	}
	sortStrings(s.names)
	sortStrings(s.extended)
	return s
}

// Dialect returns the dialect of s.
func (s *Shell) Dialect() Dialect {
	return s.dialect
}

// Names returns every command name in sorted order.
func (s *Shell) Names() []string {
	return append([]string(nil), s.names...)
}

// Lookup returns the command registered under name.
func (s *Shell) Lookup(name string) (Command, bool) {
	c, ok := s.commands[name]
	return c, ok
}

// Banner returns the lines printed when a terminal opens.
func (s *Shell) Banner() []string {
	if s.dialect == Unix {
		return []string{"retrodesk sh [Portfolio Edition]", "Type 'help' for commands."}
	}
	return []string{"Microsoft(R) Win95 DOS Shell [Portfolio Edition]", "Type 'help' for commands."}
}

// State is the persisted part of a session.
type State struct {
	Cwd     string   `json:"cwd"`
	History []string `json:"history"`
}

// Result is the outcome of one executed line.
type Result struct {
	// Prompt is the prompt the line was entered at.
	Prompt string   `json:"prompt"`
	Input  string   `json:"input"`
	Lines  []string `json:"lines"`
	// Clear asks the frontend to drop its scrollback.
	Clear bool `json:"clear,omitempty"`
}

// Session is one terminal: a working directory, a history and a
// completion cycle. Methods are safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	sh      *Shell
	cwd     string
	history []string
	histIdx int
	comp    completion
}

// NewSession starts a session from a persisted state. Invalid
// directories fall back to the root and history is trimmed to
// MaxHistory.
func (s *Shell) NewSession(st State) *Session {
	hist := st.History
	if len(hist) > MaxHistory {
		hist = hist[:MaxHistory]
	}
	return &Session{
		sh:      s,
		cwd:     vfs.Normalize(st.Cwd),
		history: append([]string(nil), hist...),
		histIdx: -1,
	}
}

// Shell returns the shell the session runs on.
func (ss *Session) Shell() *Shell {
	return ss.sh
}

// State returns a copy of the persisted state.
func (ss *Session) State() State {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return State{Cwd: ss.cwd, History: append([]string(nil), ss.history...)}
}

// Cwd returns the working directory.
func (ss *Session) Cwd() string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.cwd
}

// Prompt returns the prompt for the current directory.
func (ss *Session) Prompt() string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.promptLocked()
}

func (ss *Session) promptLocked() string {
	if ss.sh.dialect == Unix {
		return "guest@retrodesk:" + ss.cwd + "$"
	}
	return vfs.ToDOS(ss.cwd) + ">"
}

// Exec runs one input line. The line is recorded in history unless it is
// blank, and the completion cycle is reset.
func (ss *Session) Exec(line string) Result {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	res := Result{Prompt: ss.promptLocked(), Input: line}
	ss.comp = completion{}
	ss.histIdx = -1

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return res
	}
	ss.pushHistory(trimmed)

	lines, err := ss.run(trimmed)
	switch {
	case errors.Is(err, ErrClear):
		res.Clear = true
	case err != nil:
		lines = append(lines, err.Error())
	}
	res.Lines = lines
	if res.Lines == nil {
		res.Lines = []string{}
	}
	return res
}

func (ss *Session) run(line string) ([]string, error) {
	segments := []string{line}
	if ss.sh.dialect == Unix {
		var err error
		if segments, err = splitPipeline(line); err != nil {
			return nil, err
		}
	}

	var out []string
	for i, seg := range segments {
		args, err := ss.tokenize(seg)
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			if len(segments) > 1 {
				return nil, errors.New("syntax error near unexpected token `|'")
			}
			return nil, nil
		}

		name := args[0]
		if ss.sh.dialect == DOS {
			name = strings.ToLower(name)
		}
		cmd, ok := ss.sh.commands[name]
		if !ok {
			return nil, ss.unknown(args[0])
		}

		var stdin []string
		if i > 0 {
			stdin = out
		}
		out, err = cmd.Run(ss, args[1:], stdin)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (ss *Session) unknown(name string) error {
	if ss.sh.dialect == Unix {
		return fmt.Errorf("%s: command not found", name)
	}
	return errors.New("Bad command or file name")
}
