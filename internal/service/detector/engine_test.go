package detector

import (
	"context"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mitm-detector/internal/domain/neighbor"
	"github.com/oshokin/mitm-detector/internal/repository/table"
)

var (
	errTestRead = errors.New("test read error")

	hostA = netip.MustParseAddr("10.0.0.5")
	hostB = netip.MustParseAddr("10.0.0.6")
	macA  = neighbor.MacAddress{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}
	macB  = neighbor.MacAddress{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb}
	macC  = neighbor.MacAddress{0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc}
	t0    = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
)

// scriptedReader is a table.Reader returning queued snapshots in order.
type scriptedReader struct {
	// snapshots are returned one per Read call; the last one repeats.
	snapshots [][]neighbor.Record
	// errs, when set at the same index, is returned instead of the snapshot.
	errs []error
	// calls counts Read invocations.
	calls int
}

// Read returns the next scripted snapshot or error.
func (r *scriptedReader) Read(context.Context) ([]neighbor.Record, error) {
	i := min(r.calls, len(r.snapshots)-1)
	r.calls++

	if i < len(r.errs) && r.errs[i] != nil {
		return nil, r.errs[i]
	}

	return r.snapshots[i], nil
}

// TestInitialize_Duplicate verifies a duplicated host aborts initialization.
func TestInitialize_Duplicate(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{snapshots: [][]neighbor.Record{{
		{IP: hostA, MAC: macA},
		{IP: hostA, MAC: macB},
	}}}

	engine, err := Initialize(context.Background(), reader, 0, t0)
	require.ErrorIs(t, err, neighbor.ErrDuplicateHostEntry)
	require.Nil(t, engine)
}

// TestInitialize_ReadError ensures the reader failure is propagated.
func TestInitialize_ReadError(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{
		snapshots: [][]neighbor.Record{nil},
		errs:      []error{errTestRead},
	}

	engine, err := Initialize(context.Background(), reader, 0, t0)
	require.ErrorIs(t, err, errTestRead)
	require.Nil(t, engine)
}

// TestUpdate_ChangeDetected seeds one binding and observes a different MAC a second later.
func TestUpdate_ChangeDetected(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{snapshots: [][]neighbor.Record{
		{{IP: hostA, MAC: macA}},
		{{IP: hostA, MAC: macB}},
	}}

	engine, err := Initialize(context.Background(), reader, 300*time.Second, t0)
	require.NoError(t, err)

	changes, err := engine.Update(context.Background(), t0.Add(time.Second))
	require.NoError(t, err)
	require.Equal(t, []neighbor.ChangeEvent{{
		Host:     hostA,
		Previous: neighbor.Binding{MAC: macA, LastSeen: t0},
		Current:  macB,
	}}, changes)
	require.Len(t, engine.History().Bindings(hostA), 2)
}

// TestUpdate_Idempotent checks an unchanged table yields no events on repeated updates.
func TestUpdate_Idempotent(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{snapshots: [][]neighbor.Record{
		{{IP: hostA, MAC: macA}, {IP: hostB, MAC: macB}},
	}}

	engine, err := Initialize(context.Background(), reader, 0, t0)
	require.NoError(t, err)

	for range 2 {
		changes, err := engine.Update(context.Background(), t0)
		require.NoError(t, err)
		require.Empty(t, changes)
	}
}

// TestUpdate_EvictedBindingIsSilent verifies a MAC change after the window is not reported.
func TestUpdate_EvictedBindingIsSilent(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{snapshots: [][]neighbor.Record{
		{{IP: hostA, MAC: macA}},
		{{IP: hostA, MAC: macB}},
	}}

	engine, err := Initialize(context.Background(), reader, 30*time.Second, t0)
	require.NoError(t, err)

	changes, err := engine.Update(context.Background(), t0.Add(30*time.Second))
	require.NoError(t, err)
	require.Empty(t, changes)
	require.Equal(t, []neighbor.Binding{{MAC: macB, LastSeen: t0.Add(30 * time.Second)}},
		engine.History().Bindings(hostA))
}

// TestUpdate_ReadErrorKeepsHistory ensures a failed pass returns the error and changes nothing.
func TestUpdate_ReadErrorKeepsHistory(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{
		snapshots: [][]neighbor.Record{
			{{IP: hostA, MAC: macA}},
			nil,
			{{IP: hostA, MAC: macA}},
		},
		errs: []error{nil, errTestRead},
	}

	engine, err := Initialize(context.Background(), reader, 0, t0)
	require.NoError(t, err)

	changes, err := engine.Update(context.Background(), t0.Add(time.Second))
	require.ErrorIs(t, err, errTestRead)
	require.Nil(t, changes)
	require.Equal(t, []neighbor.Binding{{MAC: macA, LastSeen: t0}}, engine.History().Bindings(hostA))

	changes, err = engine.Update(context.Background(), t0.Add(2*time.Second))
	require.NoError(t, err)
	require.Empty(t, changes)
}

// TestUpdate_DuplicateRowLastWins checks a duplicated host during steady state keeps the later row.
func TestUpdate_DuplicateRowLastWins(t *testing.T) {
	t.Parallel()

	reader := &scriptedReader{snapshots: [][]neighbor.Record{
		{{IP: hostA, MAC: macA}, {IP: hostB, MAC: macB}},
		{{IP: hostA, MAC: macC}, {IP: hostB, MAC: macC}, {IP: hostA, MAC: macA}},
	}}

	engine, err := Initialize(context.Background(), reader, 0, t0)
	require.NoError(t, err)

	changes, err := engine.Update(context.Background(), t0.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, hostB, changes[0].Host)
	require.Equal(t, macC, changes[0].Current)
}

// TestUpdate_ProcTable drives the engine from a real table file.
func TestUpdate_ProcTable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "arp")
	write := func(mac string) {
		contents := "IP address       HW type     Flags       HW address            Mask     Device\n" +
			"10.0.0.5         0x1         0x2         " + mac + "     *        eth0\n"
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}

	write("aa:aa:aa:aa:aa:aa")

	engine, err := Initialize(context.Background(), table.NewProcReader(path), 0, t0)
	require.NoError(t, err)

	write("bb:bb:bb:bb:bb:bb")

	changes, err := engine.Update(context.Background(), t0.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, macA, changes[0].Previous.MAC)

	write("bb:bb:bb:bb:cg:bb")

	_, err = engine.Update(context.Background(), t0.Add(2*time.Second))
	require.ErrorIs(t, err, neighbor.ErrInvalidMacByte)
}
