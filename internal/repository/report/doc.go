// Package report implements persistence for the latest detector Report.
//
// The FileRepository stores and loads the report as JSON on disk so status
// bar widgets can read it without talking to the watcher.
package report
