package data

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/timeflow/internal/cli"
	"github.com/julianstephens/timeflow/internal/ledger"
	"github.com/julianstephens/timeflow/internal/models"
	"github.com/julianstephens/timeflow/internal/storage"
	"github.com/julianstephens/timeflow/internal/storage/sqlite"
)

var testNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

func newContext(t *testing.T, store storage.Provider) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	n := 0
	clock := func() time.Time { return testNow }
	out := &bytes.Buffer{}
	return &cli.Context{
		Store: store,
		Ledger: ledger.Open(store,
			ledger.WithClock(clock),
			ledger.WithIDGenerator(func() string {
				n++
				return fmt.Sprintf("act-%d", n)
			}),
		),
		Now: clock,
		Out: out,
	}, out
}

func logActivity(t *testing.T, l *ledger.Ledger, day, name string, minutes int) {
	t.Helper()
	require.NoError(t, l.SelectDay(day))
	_, err := l.Add(models.NewActivity{Name: name, Category: "work", Minutes: minutes})
	require.NoError(t, err)
}

// summarize flattens days to comparable strings; timestamps come back in UTC.
func summarize(days models.DayMap) map[string][]string {
	out := make(map[string][]string, len(days))
	for day, activities := range days {
		for _, a := range activities {
			out[day] = append(out[day], fmt.Sprintf("%s|%s|%s|%d|%d", a.ID, a.Name, a.Category, a.Minutes, a.CreatedAt.Unix()))
		}
	}
	return out
}

func TestExportImportRoundTrip(t *testing.T) {
	src, _ := newContext(t, storage.NewMemoryStore())
	logActivity(t, src.Ledger, "2024-01-01", "Coding", 120)
	logActivity(t, src.Ledger, "2024-01-02", "Reading", 30)

	file := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, (&ExportCmd{Out: file}).Run(src))

	dst, out := newContext(t, storage.NewMemoryStore())
	require.NoError(t, (&ImportCmd{File: file}).Run(dst))
	assert.Contains(t, out.String(), "Imported 2 activities across 2 days")
	assert.Equal(t, summarize(src.Ledger.Snapshot()), summarize(dst.Ledger.Snapshot()))

	// second import skips everything already present
	out.Reset()
	require.NoError(t, (&ImportCmd{File: file}).Run(dst))
	assert.Contains(t, out.String(), "Imported 0 activities across 2 days (2 already present, skipped)")
}

func TestExportToStdout(t *testing.T) {
	ctx, out := newContext(t, storage.NewMemoryStore())
	logActivity(t, ctx.Ledger, "2024-01-01", "Coding", 60)

	require.NoError(t, (&ExportCmd{}).Run(ctx))
	assert.Contains(t, out.String(), `"2024-01-01"`)
	assert.Contains(t, out.String(), `"name": "Coding"`)
}

func TestImportReplace(t *testing.T) {
	ctx, _ := newContext(t, storage.NewMemoryStore())
	logActivity(t, ctx.Ledger, "2024-01-05", "Old", 60)

	file := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"2024-01-01": [{"id":"x1","name":"New","category":"rest","minutes":45,"createdAt":"2024-01-01T10:00:00Z"}]
	}`), 0600))

	require.NoError(t, (&ImportCmd{File: file, Replace: true}).Run(ctx))
	days := ctx.Ledger.AllDays()
	require.Len(t, days, 1)
	assert.Equal(t, "2024-01-01", days[0].Date)
	assert.Equal(t, "New", days[0].Activities[0].Name)
}

func TestImportRejectsInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{name: "not json", content: "{", errText: "failed to parse"},
		{
			name: "over capacity",
			content: `{"2024-01-01": [
				{"id":"a","name":"A","category":"work","minutes":1000,"createdAt":"2024-01-01T10:00:00Z"},
				{"id":"b","name":"B","category":"work","minutes":500,"createdAt":"2024-01-01T10:00:00Z"}
			]}`,
			errText: "nothing was imported",
		},
		{
			name: "empty name",
			content: `{"2024-01-01": [
				{"id":"a","name":" ","category":"work","minutes":10,"createdAt":"2024-01-01T10:00:00Z"}
			]}`,
			errText: "nothing was imported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newContext(t, storage.NewMemoryStore())
			file := filepath.Join(t.TempDir(), "in.json")
			require.NoError(t, os.WriteFile(file, []byte(tt.content), 0600))

			err := (&ImportCmd{File: file}).Run(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
			assert.False(t, ctx.Ledger.HasAnyData())
		})
	}
}

func TestImportUnknownCategoryIsWarning(t *testing.T) {
	ctx, out := newContext(t, storage.NewMemoryStore())
	file := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"2024-01-01": [{"id":"a","name":"Garden","category":"gardening","minutes":10,"createdAt":"2024-01-01T10:00:00Z"}]
	}`), 0600))

	require.NoError(t, (&ImportCmd{File: file}).Run(ctx))
	assert.Contains(t, out.String(), "Warning:")
	assert.True(t, ctx.Ledger.HasAnyData())
}

func TestImportMergeOverCapacity(t *testing.T) {
	ctx, _ := newContext(t, storage.NewMemoryStore())
	logActivity(t, ctx.Ledger, "2024-01-01", "Existing", 1000)

	file := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"2024-01-01": [{"id":"x","name":"More","category":"work","minutes":500,"createdAt":"2024-01-01T10:00:00Z"}]
	}`), 0600))

	err := (&ImportCmd{File: file}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import failed")
	assert.Equal(t, 1, ctx.Ledger.Snapshot().ActivityCount())
}

func TestImportCreatesBackupForFileStores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeflow.json")
	store := storage.NewJSONStore(path)
	require.NoError(t, store.Init())
	ctx, _ := newContext(t, store)
	logActivity(t, ctx.Ledger, "2024-01-01", "Coding", 60)

	file := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(file, []byte(`{}`), 0600))
	require.NoError(t, (&ImportCmd{File: file}).Run(ctx))

	entries, err := os.ReadDir(filepath.Join(filepath.Dir(path), "backups"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestValidateCmd(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx, out := newContext(t, store)
	logActivity(t, ctx.Ledger, "2024-01-01", "Coding", 60)

	require.NoError(t, (&ValidateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No conflicts detected.")

	store.SetRaw([]byte(`{
		"2024-01-01": [
			{"id":"a","name":"A","category":"work","minutes":1000,"createdAt":"2024-01-01T10:00:00Z"},
			{"id":"a","name":"B","category":"work","minutes":500,"createdAt":"2024-01-01T10:00:00Z"}
		]
	}`))
	out.Reset()
	err := (&ValidateCmd{}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, out.String(), "[error]")
}

func TestMigrateCopiesToAnotherBackend(t *testing.T) {
	ctx, out := newContext(t, storage.NewMemoryStore())
	logActivity(t, ctx.Ledger, "2024-01-01", "Coding", 60)
	logActivity(t, ctx.Ledger, "2024-01-02", "Run", 30)

	target := filepath.Join(t.TempDir(), "copy.db")
	require.NoError(t, (&MigrateCmd{To: target}).Run(ctx))
	assert.Contains(t, out.String(), "Copied 2 activities across 2 days")

	copied := sqlite.NewStore(target)
	require.NoError(t, copied.Open())
	defer copied.Close()
	days, err := copied.Load()
	require.NoError(t, err)
	assert.Equal(t, summarize(ctx.Ledger.Snapshot()), summarize(days))
}

func TestMigrateSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeflow.db")
	store := sqlite.NewStore(path)
	require.NoError(t, store.Init())
	defer store.Close()

	ctx, out := newContext(t, store)
	require.NoError(t, (&MigrateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "up to date")

	memCtx, _ := newContext(t, storage.NewMemoryStore())
	assert.Error(t, (&MigrateCmd{}).Run(memCtx))
}
