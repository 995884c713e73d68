// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the watcher status service with
// call timeouts, detection of the observing user and host, and a guard
// against running two watchers at once.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
