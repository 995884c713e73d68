// Package server keeps the latest detector report and serves it over gRPC.
//
// Service holds the report in memory, persists it through an optional
// repository and is exposed by Serve on the address returned by Listen.
package server
