package tasklist

import (
	"taskBurst/internal/models/task"
	"time"
)

// IsOverdue: дедлайн был до сегодняшнего дня, задача не выполнена.
// Дедлайн сегодня просрочкой не считается.
func IsOverdue(t *task.Task, now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}

// StartOfDay полночь дня now в его часовом поясе. Всё, что раньше, просрочено.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DueLabel короткая подпись дедлайна: "Today", "Tomorrow" или "Jan 2".
func DueLabel(t *task.Task, now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	due := t.DueDate.In(now.Location())
	switch {
	case sameDay(due, now):
		return "Today"
	case sameDay(due, now.AddDate(0, 0, 1)):
		return "Tomorrow"
	}
	return due.Format("Jan 2")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
