// Package logtail reads the tail of todoview's own log file for the in-app
// log pane.
//
// Read keeps a ring buffer of maxLines entries so only one pass over the file
// is needed regardless of its size. Tail builds on Read and decodes each line
// as logfmt, which is what internal/logging writes:
//
//	time=2026-10-19T09:12:44Z level=warn prefix=todoview msg="fetch failed" err="context deadline exceeded"
//
// Lines that do not decode are kept verbatim so a hand-edited or truncated
// log still shows up.
package logtail
