package report

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mitm-detector/internal/domain/neighbor"
)

var (
	errTestPoll = errors.New("open neighbor table: permission denied")

	now    = time.Date(2024, time.May, 1, 12, 0, 10, 0, time.UTC)
	change = neighbor.ChangeEvent{
		Host: netip.MustParseAddr("10.0.0.5"),
		Previous: neighbor.Binding{
			MAC:      neighbor.MacAddress{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa},
			LastSeen: now.Add(-4 * time.Second),
		},
		Current: neighbor.MacAddress{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb},
	}
)

// TestNew_Levels verifies levels are derived from the update result.
func TestNew_Levels(t *testing.T) {
	t.Parallel()

	ok := New(now, nil, nil)
	require.Equal(t, LevelOK, ok.Level)
	require.Empty(t, ok.Lines())

	warning := New(now, []neighbor.ChangeEvent{change}, nil)
	require.Equal(t, LevelWarning, warning.Level)
	require.Equal(t, []string{
		"Host 10.0.0.5 has changed from aa:aa:aa:aa:aa:aa to bb:bb:bb:bb:bb:bb in 4s",
	}, warning.Lines())

	// Errors are never reported as OK, even with changes.
	failed := New(now, []neighbor.ChangeEvent{change}, errTestPoll)
	require.Equal(t, LevelError, failed.Level)
	require.Equal(t, errTestPoll.Error(), failed.Error)
	require.Empty(t, failed.Changes)
}

// TestProto_Roundtrip ensures the Struct encoding preserves every field.
func TestProto_Roundtrip(t *testing.T) {
	t.Parallel()

	want := New(now, []neighbor.ChangeEvent{change}, nil)
	want.Observer = "gateway-watch"

	value, err := want.ToProto()
	require.NoError(t, err)

	got, err := FromProto(value)
	require.NoError(t, err)
	require.Equal(t, want.Level, got.Level)
	require.Equal(t, want.Observer, got.Observer)
	require.True(t, want.Timestamp.Equal(got.Timestamp))
	require.Len(t, got.Changes, 1)
	require.Equal(t, change.Host, got.Changes[0].Host)
	require.Equal(t, change.Previous.MAC, got.Changes[0].Previous.MAC)
	require.Equal(t, change.Current, got.Changes[0].Current)
	require.True(t, change.Previous.LastSeen.Equal(got.Changes[0].Previous.LastSeen))
}

// TestClone verifies the clone does not share the changes slice.
func TestClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Report)(nil).Clone())

	r := New(now, []neighbor.ChangeEvent{change}, nil)
	c := r.Clone()
	c.Changes[0].Host = netip.MustParseAddr("10.0.0.9")

	require.Equal(t, change.Host, r.Changes[0].Host)
}
