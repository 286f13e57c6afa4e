// Package shell implements the retrodesk terminal: a line interpreter over
// the three-directory namespace of package vfs, backed by the content index.
//
// A Shell holds the command table and its collaborators. Each terminal
// window owns a Session with its own working directory, history and
// completion state. Sessions never fail: every problem is reported as
// output lines.
//
// Two dialects are supported. DOS is the default and mimics COMMAND.COM
// listings and messages. Unix adds pipelines through a small set of text
// filters:
//
//	ls /blog | grep -i dos | wc -l
package shell
