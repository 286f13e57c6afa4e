package shell

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/pflag"
)

var errUnterminated = errors.New("syntax error: unterminated quoted string")

// splitPipeline splits line on | characters outside quotes.
func splitPipeline(line string) ([]string, error) {
	var (
		segments []string
		cur      strings.Builder
		quote    rune
		escaped  bool
	)
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '|':
			segments = append(segments, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if quote != 0 {
		return nil, errUnterminated
	}
	return append(segments, cur.String()), nil
}

// tokenize splits one command into words. shlex would read '#' as the
// start of a comment and, in the DOS dialect, backslashes are path
// separators, so both are made literal first.
func (ss *Session) tokenize(seg string) ([]string, error) {
	args, err := shlex.Split(literalize(seg, ss.sh.dialect == DOS))
	if err != nil {
		return nil, errUnterminated
	}
	return args, nil
}

// literalize escapes '#' outside quotes and, when dos is set, doubles
// every backslash outside single quotes so shlex keeps them.
func literalize(s string, dos bool) string {
	if !strings.Contains(s, "#") && !(dos && strings.Contains(s, `\`)) {
		return s
	}
	var b strings.Builder
	var quote rune
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
			}
		case r == '\\':
			if dos {
				b.WriteRune(r)
			} else {
				escaped = true
			}
		case r == '"':
			if quote == '"' {
				quote = 0
			} else {
				quote = r
			}
		case r == '\'' && quote == 0:
			quote = r
		case r == '#' && quote == 0:
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// filters are the text commands available in the Unix dialect. They read
// the previous command's output.
var filters = []Command{
	{"grep", cmdGrep, "Filter lines: grep [-i] [-v] PATTERN"},
	{"head", cmdHead, "First lines: head [-n N]"},
	{"tail", cmdTail, "Last lines: tail [-n N]"},
	{"sort", cmdSort, "Sort lines: sort [-r]"},
	{"uniq", cmdUniq, "Drop repeated lines: uniq [-c]"},
	{"wc", cmdWc, "Count lines, words and bytes: wc [-l] [-w] [-c]"},
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// GrepFlags holds grep options.
type GrepFlags struct {
	IgnoreCase bool
	Invert     bool
}

func cmdGrep(_ *Session, args, stdin []string) ([]string, error) {
	var flags GrepFlags
	fs := newFlagSet("grep")
	fs.BoolVarP(&flags.IgnoreCase, "ignore-case", "i", false, "case-insensitive match")
	fs.BoolVarP(&flags.Invert, "invert-match", "v", false, "select non-matching lines")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("grep: %v", err)
	}
	if fs.NArg() == 0 {
		return nil, errors.New("usage: grep [-i] [-v] PATTERN")
	}

	pattern := fs.Arg(0)
	if flags.IgnoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		// Fall back to a literal match for patterns like "c++".
		lit := regexp.QuoteMeta(fs.Arg(0))
		if flags.IgnoreCase {
			lit = "(?i)" + lit
		}
		re = regexp.MustCompile(lit)
	}

	var out []string
	for _, line := range stdin {
		if re.MatchString(line) != flags.Invert {
			out = append(out, line)
		}
	}
	return out, nil
}

func parseCount(name string, args []string) (int, error) {
	n := 10
	fs := newFlagSet(name)
	fs.IntVarP(&n, "lines", "n", 10, "number of lines")
	if err := fs.Parse(args); err != nil {
		return 0, fmt.Errorf("%s: %v", name, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: invalid number of lines: %d", name, n)
	}
	return n, nil
}

func cmdHead(_ *Session, args, stdin []string) ([]string, error) {
	n, err := parseCount("head", args)
	if err != nil {
		return nil, err
	}
	if n > len(stdin) {
		n = len(stdin)
	}
	return stdin[:n], nil
}

func cmdTail(_ *Session, args, stdin []string) ([]string, error) {
	n, err := parseCount("tail", args)
	if err != nil {
		return nil, err
	}
	if n > len(stdin) {
		n = len(stdin)
	}
	return stdin[len(stdin)-n:], nil
}

func cmdSort(_ *Session, args, stdin []string) ([]string, error) {
	var reverse bool
	fs := newFlagSet("sort")
	fs.BoolVarP(&reverse, "reverse", "r", false, "reverse order")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("sort: %v", err)
	}

	out := append([]string(nil), stdin...)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	} else {
		sort.Strings(out)
	}
	return out, nil
}

func cmdUniq(_ *Session, args, stdin []string) ([]string, error) {
	var count bool
	fs := newFlagSet("uniq")
	fs.BoolVarP(&count, "count", "c", false, "prefix lines with their count")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("uniq: %v", err)
	}

	var out []string
	emit := func(line string, n int) {
		if count {
			line = fmt.Sprintf("%7d %s", n, line)
		}
		out = append(out, line)
	}
	for i := 0; i < len(stdin); {
		j := i + 1
		for j < len(stdin) && stdin[j] == stdin[i] {
			j++
		}
		emit(stdin[i], j-i)
		i = j
	}
	return out, nil
}

// WCFlags holds wc options.
type WCFlags struct {
	Lines bool
	Words bool
	Bytes bool
}

func cmdWc(_ *Session, args, stdin []string) ([]string, error) {
	var flags WCFlags
	fs := newFlagSet("wc")
	fs.BoolVarP(&flags.Lines, "lines", "l", false, "count lines")
	fs.BoolVarP(&flags.Words, "words", "w", false, "count words")
	fs.BoolVarP(&flags.Bytes, "bytes", "c", false, "count bytes")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("wc: %v", err)
	}
	if !flags.Lines && !flags.Words && !flags.Bytes {
		flags = WCFlags{Lines: true, Words: true, Bytes: true}
	}

	var lines, words, bytes int
	for _, line := range stdin {
		lines++
		words += len(strings.Fields(line))
		bytes += len(line) + 1
	}

	var cols []string
	if flags.Lines {
		cols = append(cols, fmt.Sprintf("%7d", lines))
	}
	if flags.Words {
		cols = append(cols, fmt.Sprintf("%7d", words))
	}
	if flags.Bytes {
		cols = append(cols, fmt.Sprintf("%7d", bytes))
	}
	return []string{strings.Join(cols, " ")}, nil
}
