package activities

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/timeflow/internal/cli"
	apperrors "github.com/julianstephens/timeflow/internal/errors"
	"github.com/julianstephens/timeflow/internal/ledger"
	"github.com/julianstephens/timeflow/internal/storage"
)

var testNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	n := 0
	clock := func() time.Time { return testNow }
	store := storage.NewMemoryStore()
	out := &bytes.Buffer{}
	ctx := &cli.Context{
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
	}
	return ctx, out
}

func runAdd(t *testing.T, ctx *cli.Context, cmd AddCmd) {
	t.Helper()
	require.NoError(t, cmd.Validate())
	require.NoError(t, cmd.Run(ctx))
}

func TestAddCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	runAdd(t, ctx, AddCmd{Name: "Deep work", Duration: "1h30m", Category: "work", Date: "today"})

	assert.Contains(t, out.String(), "Added activity: Deep work (1h 30m) on 2024-01-01 (ID: act-1)")
	assert.Contains(t, out.String(), "22h 30m remaining for 2024-01-01")
	assert.Equal(t, 90, ctx.Ledger.TotalMinutes())
}

func TestAddCmdOtherDay(t *testing.T) {
	ctx, _ := setupTestContext(t)

	runAdd(t, ctx, AddCmd{Name: "Run", Duration: "45", Category: "exercise", Date: "yesterday"})

	days := ctx.Ledger.AllDays()
	require.Len(t, days, 1)
	assert.Equal(t, "2023-12-31", days[0].Date)
	assert.Equal(t, "exercise", days[0].Activities[0].Category)
}

func TestAddCmdValidate(t *testing.T) {
	tests := []struct {
		name string
		cmd  AddCmd
	}{
		{name: "blank name", cmd: AddCmd{Name: "  ", Duration: "30"}},
		{name: "bad duration", cmd: AddCmd{Name: "x", Duration: "soon"}},
		{name: "zero duration", cmd: AddCmd{Name: "x", Duration: "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cmd.Validate())
		})
	}
}

func TestAddCmdRejectsOverBudget(t *testing.T) {
	ctx, _ := setupTestContext(t)
	runAdd(t, ctx, AddCmd{Name: "Sleep", Duration: "20h", Category: "rest", Date: "today"})

	err := (&AddCmd{Name: "More", Duration: "5h", Category: "work", Date: "today"}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Maximum 4h 0m available")
	assert.Equal(t, 1200, ctx.Ledger.TotalMinutes())
}

func TestAddCmdInvalidDate(t *testing.T) {
	ctx, _ := setupTestContext(t)
	err := (&AddCmd{Name: "x", Duration: "10", Date: "someday"}).Run(ctx)
	assert.Error(t, err)
}

func TestEditCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	runAdd(t, ctx, AddCmd{Name: "Reading", Duration: "30", Category: "learning", Date: "yesterday"})
	ctx.Ledger.SelectDate(testNow)

	cmd := &EditCmd{ID: "act-1", Name: "Novel", Duration: "1:15"}
	require.NoError(t, cmd.Validate())
	require.NoError(t, cmd.Run(ctx))

	assert.Equal(t, "2023-12-31", ctx.Ledger.Day(), "day is found by id")
	activities := ctx.Ledger.Activities()
	require.Len(t, activities, 1)
	assert.Equal(t, "Novel", activities[0].Name)
	assert.Equal(t, 75, activities[0].Minutes)
	assert.Equal(t, "learning", activities[0].Category)
	assert.Contains(t, out.String(), "Updated activity: Novel [Learning] 1h 15m (ID: act-1)")
}

func TestEditCmdMaxIncludesOwnMinutes(t *testing.T) {
	ctx, _ := setupTestContext(t)
	runAdd(t, ctx, AddCmd{Name: "A", Duration: "600", Date: "today"})
	runAdd(t, ctx, AddCmd{Name: "B", Duration: "200", Date: "today"})

	err := (&EditCmd{ID: "act-1", Duration: "1440"}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Maximum 20h 40m available")

	require.NoError(t, (&EditCmd{ID: "act-1", Duration: "1240"}).Run(ctx))
	assert.Equal(t, 1440, ctx.Ledger.TotalMinutes())
}

func TestEditCmdErrors(t *testing.T) {
	ctx, _ := setupTestContext(t)

	assert.Error(t, (&EditCmd{ID: "act-1"}).Validate(), "nothing to change")

	err := (&EditCmd{ID: "missing", Name: "x"}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	runAdd(t, ctx, AddCmd{Name: "A", Duration: "10", Date: "today"})
	err = (&EditCmd{ID: "act-1", Name: "x", Date: "yesterday"}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "explicit date must hold the activity")
}

func TestDeleteCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	runAdd(t, ctx, AddCmd{Name: "Walk", Duration: "20", Category: "exercise", Date: "today"})

	require.NoError(t, (&DeleteCmd{ID: "act-1"}).Run(ctx))
	assert.Contains(t, out.String(), "Deleted activity: Walk")
	assert.False(t, ctx.Ledger.HasAnyData())

	err := (&DeleteCmd{ID: "act-1"}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDayCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&DayCmd{Date: "today"}).Run(ctx))
	assert.Contains(t, out.String(), "Monday, January 1 (2024-01-01)")
	assert.Contains(t, out.String(), "Start tracking your time")

	runAdd(t, ctx, AddCmd{Name: "Coding", Duration: "1008", Category: "work", Date: "today"})
	out.Reset()

	require.NoError(t, (&DayCmd{Date: "2024-01-01", ShowIDs: true}).Run(ctx))
	assert.Contains(t, out.String(), "Tracked: 16h 48m (70.0% of the day, 7h 12m remaining) [warning]")
	assert.Contains(t, out.String(), "Coding (ID: act-1) [Work]")
}

func TestDaysCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&DaysCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Start tracking your time")

	runAdd(t, ctx, AddCmd{Name: "A", Duration: "60", Date: "2023-12-30"})
	runAdd(t, ctx, AddCmd{Name: "B", Duration: "30", Date: "today"})
	runAdd(t, ctx, AddCmd{Name: "C", Duration: "30", Date: "today"})
	out.Reset()

	require.NoError(t, (&DaysCmd{Limit: 1}).Run(ctx))
	assert.Contains(t, out.String(), "2024-01-01  Mon  1h 0m")
	assert.Contains(t, out.String(), "2 activities")
	assert.NotContains(t, out.String(), "2023-12-30")

	assert.Error(t, (&DaysCmd{Limit: -1}).Validate())
}

func TestCommandsRequireLedger(t *testing.T) {
	ctx := &cli.Context{Out: &bytes.Buffer{}}
	assert.ErrorIs(t, (&DayCmd{}).Run(ctx), apperrors.ErrNotInitialized)
	assert.ErrorIs(t, (&AddCmd{Name: "x", Duration: "1"}).Run(ctx), apperrors.ErrNotInitialized)
}
