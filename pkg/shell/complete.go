package shell

import (
	"slices"
	"strings"
)

// completion remembers the candidate set of the last Tab so repeated
// presses cycle through it.
type completion struct {
	matches []string
	next    int
	last    string
}

// Complete completes a single command-name token. It returns the new
// input line and whether anything was completed. Pressing Tab again on
// the returned line moves to the next candidate in sorted order.
func (ss *Session) Complete(input string) (string, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	token := strings.TrimSpace(input)
	if token == "" || strings.ContainsAny(token, " \t") {
		return input, false
	}

	// The line still holds the previous pick: keep cycling.
	if ss.comp.matches != nil && token == ss.comp.last {
		return ss.pickLocked(), true
	}

	prefix := token
	if ss.sh.dialect == DOS {
		prefix = strings.ToLower(prefix)
	}
	matches := ss.sh.Candidates(prefix)
	if len(matches) == 0 {
		ss.comp = completion{}
		return input, false
	}

	if !slices.Equal(matches, ss.comp.matches) {
		ss.comp = completion{matches: matches}
	}
	return ss.pickLocked(), true
}

func (ss *Session) pickLocked() string {
	c := &ss.comp
	pick := c.matches[c.next%len(c.matches)]
	c.next = (c.next + 1) % len(c.matches)
	c.last = pick
	return pick + " "
}

// Candidates returns the command names starting with prefix.
func (s *Shell) Candidates(prefix string) []string {
	var out []string
	for _, name := range s.names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

func (ss *Session) pushHistory(line string) {
	ss.history = append([]string{line}, ss.history...)
	if len(ss.history) > MaxHistory {
		ss.history = ss.history[:MaxHistory]
	}
}

// History returns the history, newest first.
func (ss *Session) History() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]string(nil), ss.history...)
}

// HistoryUp moves one entry back in history. It reports false when there
// is no older entry, in which case the input should stay as it is.
func (ss *Session) HistoryUp() (string, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	next := min(ss.histIdx+1, len(ss.history)-1)
	if next < 0 || next >= len(ss.history) {
		return "", false
	}
	ss.histIdx = next
	return ss.history[next], true
}

// HistoryDown moves one entry forward. Past the newest entry the input is
// empty.
func (ss *Session) HistoryDown() string {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.histIdx = max(ss.histIdx-1, -1)
	if ss.histIdx < 0 {
		return ""
	}
	return ss.history[ss.histIdx]
}
