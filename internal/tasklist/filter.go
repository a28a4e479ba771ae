package tasklist

import (
	"fmt"
	"taskBurst/internal/models/task"
)

type FilterKey string

const FilterAll FilterKey = "all"
const FilterPending FilterKey = "pending"
const FilterCompleted FilterKey = "completed"

func ParseFilterKey(raw string) (FilterKey, error) {
	switch FilterKey(raw) {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterCompleted:
		return FilterKey(raw), nil
	}
	return "", fmt.Errorf("неизвестный фильтр %q", raw)
}

// Filter выбирает подпоследовательность, результат всегда новый срез.
func Filter(tasks []*task.Task, key FilterKey) []*task.Task {
	res := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, key) {
			res = append(res, t)
		}
	}
	return res
}

func matches(t *task.Task, key FilterKey) bool {
	switch key {
	case FilterPending:
		return !t.IsCompleted
	case FilterCompleted:
		return t.IsCompleted
	}
	return true
}

// Sections делит список на "к выполнению" и "выполнено" с сохранением порядка.
func Sections(tasks []*task.Task) (pending, completed []*task.Task) {
	return Filter(tasks, FilterPending), Filter(tasks, FilterCompleted)
}
