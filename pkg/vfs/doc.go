// Package vfs provides the virtual namespace the shell walks.
//
// The namespace is flat: a root with two collection directories, /blog
// and /projects, whose entries are the documents of the content index.
// Documents can be listed and typed but not entered.
//
// # Paths
//
// Both Unix and DOS spellings are accepted. Backslashes are treated as
// separators, a leading C: is the root, and directory names match in any
// case:
//
//	dir, err := vfs.ResolveCd(`C:\BLOG`, vfs.Root)   // "/blog", nil
//	_, err = vfs.ResolveCd("blog/hello", vfs.Root)   // ErrAccessDenied
//	p := vfs.ResolvePath("hello.mdx", vfs.Blog)       // "/blog/hello.mdx"
//	_, slug, ok := vfs.ParseFile(p)                   // "hello", true
package vfs
