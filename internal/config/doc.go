// Package config defines the detector settings used by the binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the neighbor table location, the polling cadence,
// the retention window and the optional status outputs.
package config
