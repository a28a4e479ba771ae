package task

import (
	"time"
)

// Patch частичное обновление. Заполняются только переданные поля,
// id, user_id и created_at изменить нельзя.
type Patch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Priority         *Priority
	DueDate          *time.Time
	ClearDueDate     bool
	IsCompleted      *bool
}

type PatchOption func(*Patch)

func WithTitle(title string) PatchOption {
	return func(p *Patch) {
		p.Title = &title
	}
}

func WithDescription(description string) PatchOption {
	return func(p *Patch) {
		p.Description = &description
		p.ClearDescription = false
	}
}

func WithoutDescription() PatchOption {
	return func(p *Patch) {
		p.Description = nil
		p.ClearDescription = true
	}
}

func WithPriority(priority Priority) PatchOption {
	return func(p *Patch) {
		p.Priority = &priority
	}
}

func WithDueDate(dueDate time.Time) PatchOption {
	return func(p *Patch) {
		p.DueDate = &dueDate
		p.ClearDueDate = false
	}
}

func WithoutDueDate() PatchOption {
	return func(p *Patch) {
		p.DueDate = nil
		p.ClearDueDate = true
	}
}

func WithCompleted(completed bool) PatchOption {
	return func(p *Patch) {
		p.IsCompleted = &completed
	}
}

func NewPatch(options ...PatchOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil && !p.ClearDescription &&
		p.Priority == nil &&
		p.DueDate == nil && !p.ClearDueDate &&
		p.IsCompleted == nil
}

// Apply применяет патч к копии задачи; UpdatedAt выставляет хранилище.
func (p Patch) Apply(t *Task) *Task {
	res := t.Clone()
	if p.Title != nil {
		res.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		res.Description = &d
	}
	if p.ClearDescription {
		res.Description = nil
	}
	if p.Priority != nil {
		res.Priority = *p.Priority
	}
	if p.DueDate != nil {
		due := *p.DueDate
		res.DueDate = &due
	}
	if p.ClearDueDate {
		res.DueDate = nil
	}
	if p.IsCompleted != nil {
		res.IsCompleted = *p.IsCompleted
	}
	return res
}
