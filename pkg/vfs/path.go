package vfs

import (
	"path"
	"strings"
)

// Clean turns a Unix or DOS spelling into an absolute slash path. A
// leading C: is the root, backslashes separate, and ".." never climbs
// above the root.
func Clean(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if hasDrive(p) {
		p = p[2:]
	}
	return path.Clean("/" + p)
}

// IsAbs reports whether p starts at the root in either spelling.
func IsAbs(p string) bool {
	return strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) || hasDrive(p)
}

// Ext returns the extension of the last element of p, dot included.
func Ext(p string) string {
	return path.Ext(Clean(p))
}

func hasDrive(p string) bool {
	return len(p) >= 2 && strings.EqualFold(p[:2], "c:")
}
