package tasklist

import "taskBurst/internal/models/task"

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	// Percentage nil для пустого списка: показываем "нет задач", а не 0%.
	Percentage *int `json:"completion_percentage"`
}

func (s Stats) HasPercentage() bool {
	return s.Percentage != nil
}

// ComputeStats считается по полному списку, не по отфильтрованному.
func ComputeStats(tasks []*task.Task) Stats {
	stats := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.IsCompleted {
			stats.Completed++
		}
	}
	stats.Pending = stats.Total - stats.Completed

	if stats.Total == 0 {
		return stats
	}
	// round(100*c/t) с округлением половины вверх, без float
	pct := (200*stats.Completed + stats.Total) / (2 * stats.Total)
	stats.Percentage = &pct
	return stats
}

type View struct {
	Tasks  []*task.Task
	Stats  Stats
	Filter FilterKey
	Sort   SortKey
}

// Compose: сначала фильтр, потом сортировка; статистика по всему списку.
func Compose(all []*task.Task, filter FilterKey, sort SortKey) View {
	return View{
		Tasks:  Sort(Filter(all, filter), sort),
		Stats:  ComputeStats(all),
		Filter: filter,
		Sort:   sort,
	}
}
