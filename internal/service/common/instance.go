//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"
)

// maxCommLength is how many bytes of the executable name Linux keeps in /proc/<pid>/stat.
const maxCommLength = 15

// ErrAlreadyRunning is returned when another process runs the same executable.
var ErrAlreadyRunning = errors.New("another instance is already running")

// EnsureSingleInstance fails when another process runs the current executable.
// Two watchers would race on the status address and the change log.
func EnsureSingleInstance() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	others := findOtherInstances(processList, filepath.Base(executable), os.Getpid())
	if len(others) > 0 {
		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, others[0])
	}

	return nil
}

// findOtherInstances returns the PIDs of processes named like executable, except self.
func findOtherInstances(processList []ps.Process, executable string, self int) []int {
	want := normalizeExecutable(executable)

	var pids []int

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if normalizeExecutable(process.Executable()) != want {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids
}

// normalizeExecutable makes names comparable across platforms.
func normalizeExecutable(name string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(name)
	}

	if runtime.GOOS == "linux" && len(name) > maxCommLength {
		return name[:maxCommLength]
	}

	return name
}
