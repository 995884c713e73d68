// Package report describes the outcome of one detector poll as handed to
// presentation layers: either OK, a warning carrying MAC changes, or an
// error that left the detector degraded.
package report
