// Package tasklist собирает представление списка задач: фильтр, сортировка,
// статистика. Все функции чистые и не меняют входной срез.
package tasklist

import (
	"fmt"
	"slices"
	"taskBurst/internal/models/task"
)

type SortKey string

const SortCreated SortKey = "created"
const SortDueDate SortKey = "due_date"
const SortPriority SortKey = "priority"

func ParseSortKey(raw string) (SortKey, error) {
	switch SortKey(raw) {
	case "":
		return SortCreated, nil
	case SortCreated, SortDueDate, SortPriority:
		return SortKey(raw), nil
	}
	return "", fmt.Errorf("неизвестный ключ сортировки %q", raw)
}

// Sort возвращает новый упорядоченный срез. Сортировка стабильная:
// равные по ключу задачи сохраняют исходный порядок.
func Sort(tasks []*task.Task, key SortKey) []*task.Task {
	res := slices.Clone(tasks)
	if res == nil {
		res = []*task.Task{}
	}

	cmp := comparator(key)
	if cmp == nil {
		return res
	}
	slices.SortStableFunc(res, cmp)
	return res
}

func comparator(key SortKey) func(a, b *task.Task) int {
	switch key {
	case SortCreated:
		return byCreatedDesc
	case SortDueDate:
		return byDueDateAsc
	case SortPriority:
		return byPriority
	}
	return nil
}

func byCreatedDesc(a, b *task.Task) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

// задачи без дедлайна всегда после задач с дедлайном
func byDueDateAsc(a, b *task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}

func byPriority(a, b *task.Task) int {
	return a.Priority.Rank() - b.Priority.Rank()
}
