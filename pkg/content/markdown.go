package content

import (
	"fmt"
	"strings"
)

// Markdown flattens the components of a body into plain markdown that a
// terminal renderer can display.
func (r *Renderer) Markdown(src string) (string, error) {
	nodes, err := parseComponents(src)
	if err != nil {
		return "", err
	}
	md, err := flatten(nodes)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md) + "\n", nil
}

func flatten(nodes []node) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		if n.isText() {
			b.WriteString(n.text)
			continue
		}
		md, err := flattenComponent(n)
		if err != nil {
			return "", err
		}
		b.WriteString(md)
	}
	return b.String(), nil
}

func flattenComponent(n node) (string, error) {
	inner, err := flatten(n.children)
	if err != nil {
		return "", err
	}
	inner = strings.TrimSpace(inner)

	switch n.name {
	case "Callout":
		title, ok := calloutTitles[n.attr("type", "info")]
		if !ok {
			title = calloutTitles["info"]
		}
		return quote(n.attr("title", title), inner), nil
	case "Note", "Warning":
		return quote(n.attr("title", n.name), inner), nil
	case "Figure":
		out := fmt.Sprintf("\n![%s](%s)\n", n.attr("alt", ""), n.attr("src", ""))
		if c := n.attr("caption", ""); c != "" {
			out += "\n*" + c + "*\n"
		}
		return out, nil
	case "Details":
		return fmt.Sprintf("\n**▸ %s**\n\n%s\n", n.attr("summary", "Details"), inner), nil
	case "Tab":
		return fmt.Sprintf("\n**%s**\n\n%s\n", n.attr("label", n.attr("id", "")), inner), nil
	case "Files":
		items, err := parseFileItems(n)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "\n**%s**\n\n", n.attr("title", "Files"))
		for _, it := range items {
			fmt.Fprintf(&b, "- `%s`", it.Name)
			if it.Note != "" {
				fmt.Fprintf(&b, " – %s", it.Note)
			}
			b.WriteString("\n")
		}
		return b.String(), nil
	case "Badge":
		return "`[" + plainText(n.children) + "]`", nil
	case "Kbd":
		return "`" + plainText(n.children) + "`", nil
	case "Stat":
		return fmt.Sprintf("%s **%s**", n.attr("label", ""), n.attr("value", "")), nil
	default:
		// Tabs, columns and unknown wrappers keep their content.
		return "\n" + inner + "\n", nil
	}
}

func quote(title, body string) string {
	var b strings.Builder
	b.WriteString("\n> **" + title + "**\n>\n")
	for _, line := range strings.Split(body, "\n") {
		b.WriteString(strings.TrimRight("> "+line, " ") + "\n")
	}
	return b.String()
}
