package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"retrodesk/pkg/desktop"
	"retrodesk/pkg/wm"
)

var shCommands []string

var shCmd = &cobra.Command{
	Use:   "sh",
	Short: "Run the portfolio terminal on stdin",
	Long: `Run the portfolio terminal line by line on stdin, or run the lines
given with -c and exit. It starts from the history and working
directory saved by the last terminal window.`,
	Example: `  retrodesk sh
  retrodesk sh --dialect unix -c "ls projects" -c "cat blog/hello-world"`,
	Args: cobra.NoArgs,
	RunE: runSh,
}

func init() {
	shCmd.Flags().StringArrayVarP(&shCommands, "command", "c", nil, "run this line and exit (repeatable)")
}

func runSh(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	rep, err := a.desktop.Dispatch(desktop.Open{Kind: wm.KindTerminal})
	if err != nil {
		return err
	}
	term := &terminal{d: a.desktop, id: rep.Window.ID, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	defer term.close()

	if len(shCommands) > 0 {
		for _, line := range shCommands {
			term.exec(line)
		}
		return nil
	}
	return term.repl(cmd.InOrStdin())
}

// terminal drives one terminal window from a line oriented stream.
type terminal struct {
	d      *desktop.Desktop
	id     string
	out    io.Writer
	errOut io.Writer
}

func (t *terminal) prompt() string {
	_, c, err := t.d.Window(t.id)
	if err != nil {
		return ">"
	}
	p := c.(*desktop.Terminal).Prompt
	if strings.HasSuffix(p, ">") {
		return p
	}
	return p + " "
}

func (t *terminal) exec(line string) {
	rep, err := t.d.Dispatch(desktop.Exec{ID: t.id, Line: line})
	if err != nil {
		fmt.Fprintln(t.errOut, err)
		return
	}
	if rep.Exec.Clear {
		fmt.Fprint(t.out, "\033[H\033[2J")
		return
	}
	for _, l := range rep.Exec.Lines {
		fmt.Fprintln(t.out, l)
	}
}

func (t *terminal) repl(in io.Reader) error {
	for _, l := range t.d.Shell().Banner() {
		fmt.Fprintln(t.out, l)
	}
	fmt.Fprintln(t.out)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(t.out, t.prompt())
		if !sc.Scan() {
			fmt.Fprintln(t.out)
			return sc.Err()
		}
		line := sc.Text()
		if strings.EqualFold(strings.TrimSpace(line), "exit") {
			return nil
		}
		t.exec(line)
	}
}

// close removes the window so it is not restored by the next session.
func (t *terminal) close() {
	_, _ = t.d.Dispatch(desktop.Close{ID: t.id})
}
