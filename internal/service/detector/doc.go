// Package detector implements the change engine: it owns the neighbor
// History, pulls a fresh snapshot on every Update and returns the MAC
// address changes found within the retention window.
package detector
