package tasklist_test

import (
	"math/rand"
	"taskBurst/internal/models/task"
	"taskBurst/internal/tasklist"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTask(title string, completed bool, due *time.Time) *task.Task {
	return &task.Task{
		ID:          uuid.New(),
		Title:       title,
		Priority:    task.PriorityMedium,
		IsCompleted: completed,
		DueDate:     due,
	}
}

func titles(tasks []*task.Task) []string {
	res := make([]string, len(tasks))
	for i, t := range tasks {
		res[i] = t.Title
	}
	return res
}

func randomTasks(r *rand.Rand, n int) []*task.Task {
	priorities := []task.Priority{task.PriorityLow, task.PriorityMedium, task.PriorityHigh}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res := make([]*task.Task, n)
	for i := range res {
		t := newTask(uuid.NewString(), r.Intn(2) == 0, nil)
		t.Priority = priorities[r.Intn(3)]
		t.CreatedAt = base.Add(time.Duration(r.Intn(1000)) * time.Hour)
		if r.Intn(3) > 0 {
			due := base.Add(time.Duration(r.Intn(1000)) * time.Hour)
			t.DueDate = &due
		}
		res[i] = t
	}
	return res
}

// TestCompose_PendingByDueDate сценарий: pending + due_date даёт [C, A]
func TestCompose_PendingByDueDate(t *testing.T) {
	tasks := []*task.Task{
		newTask("A", false, date(2024, 1, 10)),
		newTask("B", true, nil),
		newTask("C", false, date(2024, 1, 5)),
	}

	view := tasklist.Compose(tasks, tasklist.FilterPending, tasklist.SortDueDate)

	assert.Equal(t, []string{"C", "A"}, titles(view.Tasks))
	// статистика по полному списку
	assert.Equal(t, 3, view.Stats.Total)
	assert.Equal(t, 1, view.Stats.Completed)
	require.NotNil(t, view.Stats.Percentage)
	assert.Equal(t, 33, *view.Stats.Percentage)
	// вход не изменён
	assert.Equal(t, []string{"A", "B", "C"}, titles(tasks))
}

func TestSort_Created(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := newTask("older", false, nil)
	older.CreatedAt = base
	newer := newTask("newer", false, nil)
	newer.CreatedAt = base.Add(time.Minute)

	sorted := tasklist.Sort([]*task.Task{older, newer}, tasklist.SortCreated)
	assert.Equal(t, []string{"newer", "older"}, titles(sorted))
}

func TestSort_DueDateNilsLast(t *testing.T) {
	tasks := []*task.Task{
		newTask("none-1", false, nil),
		newTask("late", false, date(2030, 1, 1)),
		newTask("none-2", false, nil),
		newTask("early", false, date(2020, 1, 1)),
	}

	sorted := tasklist.Sort(tasks, tasklist.SortDueDate)
	assert.Equal(t, []string{"early", "late", "none-1", "none-2"}, titles(sorted))
}

func TestSort_PriorityHighFirst(t *testing.T) {
	low := newTask("low", false, nil)
	low.Priority = task.PriorityLow
	high := newTask("high", false, nil)
	high.Priority = task.PriorityHigh
	medium := newTask("medium", false, nil)

	sorted := tasklist.Sort([]*task.Task{low, medium, high}, tasklist.SortPriority)
	assert.Equal(t, []string{"high", "medium", "low"}, titles(sorted))
}

func TestSort_StableOnTies(t *testing.T) {
	tasks := []*task.Task{newTask("1", false, nil), newTask("2", false, nil), newTask("3", false, nil)}
	sorted := tasklist.Sort(tasks, tasklist.SortPriority)
	assert.Equal(t, []string{"1", "2", "3"}, titles(sorted))
}

func TestSort_UnknownKeyKeepsOrder(t *testing.T) {
	tasks := []*task.Task{newTask("b", false, nil), newTask("a", false, nil)}
	sorted := tasklist.Sort(tasks, "title")
	assert.Equal(t, []string{"b", "a"}, titles(sorted))
	sorted[0] = nil
	assert.NotNil(t, tasks[0], "результат должен быть новым срезом")
}

// TestSort_Properties проверяет инварианты на случайных данных
func TestSort_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		tasks := randomTasks(r, r.Intn(30))

		for _, key := range []tasklist.SortKey{tasklist.SortCreated, tasklist.SortDueDate, tasklist.SortPriority} {
			sorted := tasklist.Sort(tasks, key)
			require.Len(t, sorted, len(tasks))
			assert.ElementsMatch(t, tasks, sorted)

			for j := 1; j < len(sorted); j++ {
				prev, cur := sorted[j-1], sorted[j]
				switch key {
				case tasklist.SortCreated:
					assert.False(t, prev.CreatedAt.Before(cur.CreatedAt))
				case tasklist.SortDueDate:
					if prev.DueDate == nil {
						assert.Nil(t, cur.DueDate, "задача с дедлайном не может идти после задачи без него")
					}
				case tasklist.SortPriority:
					assert.LessOrEqual(t, prev.Priority.Rank(), cur.Priority.Rank())
				}
			}
		}
	}
}

// TestFilter_Partition completed ∪ pending = весь список
func TestFilter_Partition(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		tasks := randomTasks(r, r.Intn(30))

		completed := tasklist.Filter(tasks, tasklist.FilterCompleted)
		pending := tasklist.Filter(tasks, tasklist.FilterPending)
		all := tasklist.Filter(tasks, tasklist.FilterAll)

		assert.Len(t, all, len(tasks))
		assert.Equal(t, tasks, all)
		assert.ElementsMatch(t, tasks, append(append([]*task.Task{}, completed...), pending...))
		for _, c := range completed {
			assert.True(t, c.IsCompleted)
		}
		for _, p := range pending {
			assert.False(t, p.IsCompleted)
		}
	}
}

func TestSections(t *testing.T) {
	tasks := []*task.Task{newTask("a", true, nil), newTask("b", false, nil), newTask("c", true, nil)}
	pending, completed := tasklist.Sections(tasks)
	assert.Equal(t, []string{"b"}, titles(pending))
	assert.Equal(t, []string{"a", "c"}, titles(completed))
}

func TestParseKeys(t *testing.T) {
	s, err := tasklist.ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, tasklist.SortCreated, s)

	s, err = tasklist.ParseSortKey("priority")
	require.NoError(t, err)
	assert.Equal(t, tasklist.SortPriority, s)

	_, err = tasklist.ParseSortKey("title")
	assert.Error(t, err)

	f, err := tasklist.ParseFilterKey("")
	require.NoError(t, err)
	assert.Equal(t, tasklist.FilterAll, f)

	_, err = tasklist.ParseFilterKey("archived")
	assert.Error(t, err)
}

func TestComputeStats(t *testing.T) {
	t.Run("empty collection has no percentage", func(t *testing.T) {
		stats := tasklist.ComputeStats(nil)
		assert.Equal(t, 0, stats.Total)
		assert.False(t, stats.HasPercentage())
		assert.Nil(t, stats.Percentage)
	})

	tests := []struct {
		completed, total, expected int
	}{
		{0, 1, 0},
		{1, 1, 100},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
	}
	for _, tt := range tests {
		tasks := make([]*task.Task, 0, tt.total)
		for i := 0; i < tt.total; i++ {
			tasks = append(tasks, newTask("t", i < tt.completed, nil))
		}
		stats := tasklist.ComputeStats(tasks)
		require.True(t, stats.HasPercentage())
		assert.Equal(t, tt.expected, *stats.Percentage, "%d/%d", tt.completed, tt.total)
		assert.Equal(t, tt.total-tt.completed, stats.Pending)
	}
}

func TestDueHelpers(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

	yesterday := newTask("y", false, date(2024, 1, 9))
	today := newTask("t", false, date(2024, 1, 10))
	tomorrow := newTask("tm", false, date(2024, 1, 11))
	later := newTask("l", false, date(2024, 2, 3))
	doneLate := newTask("d", true, date(2024, 1, 1))
	noDue := newTask("n", false, nil)

	assert.True(t, tasklist.IsOverdue(yesterday, now))
	assert.False(t, tasklist.IsOverdue(today, now))
	assert.False(t, tasklist.IsOverdue(tomorrow, now))
	assert.False(t, tasklist.IsOverdue(doneLate, now))
	assert.False(t, tasklist.IsOverdue(noDue, now))

	assert.Equal(t, "Today", tasklist.DueLabel(today, now))
	assert.Equal(t, "Tomorrow", tasklist.DueLabel(tomorrow, now))
	assert.Equal(t, "Feb 3", tasklist.DueLabel(later, now))
	assert.Equal(t, "", tasklist.DueLabel(noDue, now))
}

func TestStartOfDay(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 1, 15, 1, 30, 0, 0, zone)

	start := tasklist.StartOfDay(now)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, zone), start)

	// граница совпадает с IsOverdue в часовом поясе now
	justBefore := start.Add(-time.Nanosecond).UTC()
	atStart := start.UTC()
	assert.True(t, tasklist.IsOverdue(newTask("before", false, &justBefore), now))
	assert.False(t, tasklist.IsOverdue(newTask("at", false, &atStart), now))
}
