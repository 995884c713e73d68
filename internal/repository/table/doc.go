// Package table reads snapshots of the operating system neighbor (ARP) table.
//
// The Reader interface is what the detector depends on; ProcReader implements
// it for the Linux /proc/net/arp text format.
package table
