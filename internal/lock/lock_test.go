package lock

import (
	"os"
	"strconv"
	"testing"

	ps "github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

// stubProcesses installs a fake process table and a fixed own PID.
func stubProcesses(t *testing.T, self int, table map[int]string) {
	t.Helper()
	oldFind, oldPid, oldExe := findProcessFunc, getpidFunc, executableFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if exe, ok := table[pid]; ok {
			return &mockProcess{pid: pid, executable: exe}, nil
		}
		return nil, nil
	}
	getpidFunc = func() int { return self }
	executableFunc = func() string { return "timeflow" }
	t.Cleanup(func() {
		findProcessFunc, getpidFunc, executableFunc = oldFind, oldPid, oldExe
	})
}

func writeLock(t *testing.T, dir string, pid int) {
	t.Helper()
	require.NoError(t, os.WriteFile(Path(dir), []byte(strconv.Itoa(pid)), 0600))
}

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	stubProcesses(t, 100, map[int]string{100: "timeflow"})

	l, err := Acquire(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, "100", string(data))

	pid, alive, err := Status(dir)
	require.NoError(t, err)
	assert.Equal(t, 100, pid)
	assert.True(t, alive)

	require.NoError(t, l.Release())
	_, err = os.Stat(Path(dir))
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireFailsWhenHeldByLiveProcess(t *testing.T) {
	dir := t.TempDir()
	stubProcesses(t, 100, map[int]string{200: "timeflow"})
	writeLock(t, dir, 200)

	_, err := Acquire(dir)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	tests := []struct {
		name  string
		table map[int]string
	}{
		{name: "dead process", table: map[int]string{}},
		{name: "pid reused by another program", table: map[int]string{200: "bash"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			stubProcesses(t, 100, tt.table)
			writeLock(t, dir, 200)

			l, err := Acquire(dir)
			require.NoError(t, err)
			defer l.Release()

			pid, _, err := Status(dir)
			require.NoError(t, err)
			assert.Equal(t, 100, pid)
		})
	}
}

func TestAcquireReplacesMalformedLock(t *testing.T) {
	dir := t.TempDir()
	stubProcesses(t, 100, nil)
	require.NoError(t, os.WriteFile(Path(dir), []byte("garbage"), 0600))

	l, err := Acquire(dir)
	require.NoError(t, err)
	require.NoError(t, l.Release())
}

func TestReleaseLeavesForeignLock(t *testing.T) {
	dir := t.TempDir()
	stubProcesses(t, 100, nil)

	l, err := Acquire(dir)
	require.NoError(t, err)
	writeLock(t, dir, 300)

	require.NoError(t, l.Release())
	_, err = os.Stat(Path(dir))
	assert.NoError(t, err, "lock now owned by someone else is kept")

	var nilLock *Lock
	assert.NoError(t, nilLock.Release())
}

func TestStatusWithoutLock(t *testing.T) {
	pid, alive, err := Status(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, pid)
	assert.False(t, alive)
}

func TestSameProgram(t *testing.T) {
	assert.True(t, sameProgram("timeflow", "/usr/local/bin/timeflow"))
	assert.True(t, sameProgram("TIMEFLOW.EXE", "timeflow"))
	assert.False(t, sameProgram("timeflow-tray", "timeflow"))
}
