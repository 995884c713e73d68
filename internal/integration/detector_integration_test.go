package integration

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/oshokin/mitm-detector/internal/config"
	domain "github.com/oshokin/mitm-detector/internal/domain/report"
	"github.com/oshokin/mitm-detector/internal/render"
	"github.com/oshokin/mitm-detector/internal/service/common"
	"github.com/oshokin/mitm-detector/internal/service/status"
	"github.com/oshokin/mitm-detector/internal/service/watcher"
)

// writeTable stores a two-row neighbor table, the gateway answering with gatewayMAC.
func writeTable(t *testing.T, path, gatewayMAC string) {
	t.Helper()

	contents := "IP address       HW type     Flags       HW address            Mask     Device\n" +
		"192.168.1.1      0x1         0x2         " + gatewayMAC + "     *        wlan0\n" +
		"192.168.1.20     0x1         0x0         00:00:00:00:00:00     *        wlan0\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}

// freeAddress reserves a free loopback port for the test server.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// TestWatcher_StatusRoundtrip runs the real watcher with its gRPC status server and
// queries it the way a status bar widget does.
func TestWatcher_StatusRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tablePath := filepath.Join(dir, "arp")
	statusPath := filepath.Join(dir, "status.json")
	addr := freeAddress(t)

	writeTable(t, tablePath, "44:ce:7d:60:66:98")

	configPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(configPath, &config.Config{
		NeighborTable:   tablePath,
		PollInterval:    time.Second,
		RetentionWindow: time.Minute,
		StatusAddress:   addr,
		StatusFile:      statusPath,
		Timeout:         3 * time.Second,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- watcher.Run(ctx, &watcher.Options{
			ConfigPath:    configPath,
			Format:        render.FormatLog,
			Output:        new(bytes.Buffer),
			AllowMultiple: true,
		})
	}()

	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	client, err := common.Dial(ctx, addr, common.WithCallTimeout(time.Second))
	require.NoError(t, err)

	defer func() {
		_ = client.Close()
	}()

	// Wait for the watcher to publish a clean report.
	require.Eventually(t, func() bool {
		r, err := client.GetReport(ctx)

		return err == nil && r.Level == domain.LevelOK
	}, 5*time.Second, 20*time.Millisecond)

	// The gateway starts answering with another MAC. The warning stays
	// published until the next poll.
	writeTable(t, tablePath, "de:ad:be:ef:00:01")

	var latest *domain.Report

	require.Eventually(t, func() bool {
		latest, err = client.GetReport(ctx)

		return err == nil && latest.Level == domain.LevelWarning
	}, 5*time.Second, 20*time.Millisecond)

	require.Len(t, latest.Changes, 1)
	require.Equal(t, "192.168.1.1", latest.Changes[0].Host.String())
	require.Equal(t, "44:ce:7d:60:66:98", latest.Changes[0].Previous.MAC.String())
	require.Equal(t, "de:ad:be:ef:00:01", latest.Changes[0].Current.String())

	// mitm-status renders the same kind of state from the service.
	var out bytes.Buffer

	require.NoError(t, status.Run(ctx, &status.Options{
		ConfigPath:    configPath,
		ServerAddress: addr,
		Format:        render.FormatWaybar,
		Output:        &out,
	}))
	require.Equal(t, "warning", gjson.Get(out.String(), "class").String())

	// And from the status file.
	out.Reset()

	require.NoError(t, status.Run(ctx, &status.Options{
		ConfigPath: configPath,
		File:       statusPath,
		Format:     render.FormatWaybar,
		Output:     &out,
	}))
	require.Equal(t, "warning", gjson.Get(out.String(), "class").String())
}

// TestStatus_UnreachableWatcher verifies a dead watcher is shown as an error state.
func TestStatus_UnreachableWatcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(configPath, &config.Config{Timeout: 200 * time.Millisecond}))

	var out bytes.Buffer

	require.NoError(t, status.Run(context.Background(), &status.Options{
		ConfigPath:    configPath,
		ServerAddress: freeAddress(t),
		Format:        render.FormatWaybar,
		Output:        &out,
	}))
	require.Equal(t, "error", gjson.Get(out.String(), "class").String())
}
