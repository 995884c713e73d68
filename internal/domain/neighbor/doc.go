// Package neighbor contains the core domain types of the ARP spoofing detector.
//
// It defines MacAddress and Record (one row of the OS neighbor table), the
// parser that turns a textual row into a Record, and History: the per-host
// collection of remembered MAC bindings that is diffed against every fresh
// snapshot to produce ChangeEvent values.
package neighbor
