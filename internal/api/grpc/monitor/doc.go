// Package monitor exposes the latest detector report over gRPC.
//
// MonitorService has a single unary method, GetReport, that takes
// google.protobuf.Empty and returns the report encoded as a
// google.protobuf.Struct. The service descriptor is registered by hand so
// no generated code is needed.
package monitor
