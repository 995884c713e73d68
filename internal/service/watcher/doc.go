// Package watcher drives the detector: it polls the neighbor table on a
// fixed interval, renders every report, publishes it to the status service
// and gives up after too many consecutive failed polls.
package watcher
