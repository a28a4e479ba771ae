package task

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type Priority string

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

// Rank порядок сортировки по важности: high=0, medium=1, low=2.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// CreateInput данные от клиента для создания задачи
type CreateInput struct {
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
}

// NewTask то, что уходит в хранилище: уже проверенные поля и владелец
type NewTask struct {
	UserID      uuid.UUID
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
}

// Clone глубокая копия, чтобы хранилище не отдавало наружу свои указатели.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return &c
}

// DueCursor позиция в выборке задач по сроку, порядок (due_date, id).
// Nil-курсор означает начало выборки.
type DueCursor struct {
	DueDate time.Time
	ID      uuid.UUID
}

func CursorAt(t *Task) *DueCursor {
	if t.DueDate == nil {
		return nil
	}
	return &DueCursor{DueDate: *t.DueDate, ID: t.ID}
}

// CompareDue упорядочивает задачи со сроком по (due_date, id).
// id сравниваются побайтно, как uuid в PostgreSQL.
func CompareDue(a, b DueCursor) int {
	if c := a.DueDate.Compare(b.DueDate); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}
