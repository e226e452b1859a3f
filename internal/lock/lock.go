// Package lock keeps two timeflow processes from writing the same store.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/timeflow/internal/constants"
	"github.com/julianstephens/timeflow/internal/logger"
)

// ErrLocked is returned when another live timeflow process holds the lock.
var ErrLocked = errors.New("another timeflow process is using this data")

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
	executableFunc  = currentExecutable
)

func currentExecutable() string {
	exe, err := os.Executable()
	if err != nil {
		return constants.AppName
	}
	return filepath.Base(exe)
}

// Lock is a held lock file.
type Lock struct {
	path string
	pid  int
}

// Path returns the lock file path for dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.LockfileName)
}

// Acquire creates the lock file in dir holding this process's PID. A lock
// left behind by a dead process, or by a PID now used by some other
// program, is replaced.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := Path(dir)
	pid := getpidFunc()

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(pid))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path, pid: pid}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		holder, alive, err := Status(dir)
		if err != nil {
			return nil, err
		}
		if alive && holder != pid {
			return nil, fmt.Errorf("%w (pid %d, lock file %s)", ErrLocked, holder, path)
		}
		logger.Warn("Replacing stale lock file", "path", path, "pid", holder)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lock file: %w", err)
		}
	}
	return nil, fmt.Errorf("%w (lock file %s keeps reappearing)", ErrLocked, path)
}

// Release removes the lock file if it still belongs to this lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read lock file: %w", err)
	}
	if pid, _ := strconv.Atoi(strings.TrimSpace(string(data))); pid != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// Status reports the PID recorded in dir's lock file and whether that PID
// is a running timeflow process. A missing file reports (0, false, nil).
func Status(dir string) (int, bool, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read lock file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		// malformed: treat as stale
		return 0, false, nil
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return pid, false, nil
	}
	return pid, sameProgram(process.Executable(), executableFunc()), nil
}

func sameProgram(a, b string) bool {
	trim := func(s string) string {
		return strings.TrimSuffix(strings.ToLower(filepath.Base(s)), ".exe")
	}
	return trim(a) == trim(b)
}
