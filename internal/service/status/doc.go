// Package status implements the one-shot status query used by status bar
// widgets: it fetches the latest report from a running watcher (or from its
// status file) and renders it once.
package status
