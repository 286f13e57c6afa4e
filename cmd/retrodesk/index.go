package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"retrodesk/pkg/content"
)

var (
	indexJSON  bool
	indexQuery string
)

var indexCmd = &cobra.Command{
	Use:   "index [project|post]",
	Short: "List the loaded projects and posts",
	Long: `Load the content directory, or the bundled samples, and list what the
desktop would show. Documents that failed to render are flagged.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"project", "post"},
	RunE:      runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "print JSON")
	indexCmd.Flags().StringVarP(&indexQuery, "query", "q", "", "only list documents matching this text")
}

type indexEntry struct {
	Type  content.Type `json:"type"`
	Meta  content.Meta `json:"meta"`
	Error string       `json:"error,omitempty"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	ix, err := loadIndex(cfg, logger)
	if err != nil {
		return err
	}

	types := content.Types
	if len(args) == 1 {
		t, err := content.ParseType(args[0])
		if err != nil {
			return err
		}
		types = []content.Type{t}
	}

	var entries []indexEntry
	for _, t := range types {
		for _, m := range ix.Search(t, indexQuery) {
			e := indexEntry{Type: t, Meta: m}
			if doc, err := ix.GetBySlug(t, m.Slug); err == nil && doc.RenderErr != nil {
				e.Error = doc.RenderErr.Error()
			}
			entries = append(entries, e)
		}
	}

	if indexJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return printIndex(cmd.OutOrStdout(), entries)
}

func printIndex(w io.Writer, entries []indexEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No documents.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TYPE", "SLUG", "TITLE", "DATE", "TAGS", "NOTE")
	for _, e := range entries {
		date := e.Meta.Date
		if ts := e.Meta.Time(); !ts.IsZero() {
			date = fmt.Sprintf("%s (%s)", e.Meta.Date, humanize.Time(ts))
		}
		note := ""
		if e.Error != "" {
			note = "render error: " + e.Error
		}
		t.Row(string(e.Type), e.Meta.Slug, e.Meta.Title, date, strings.Join(e.Meta.Tags, ", "), note)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}
