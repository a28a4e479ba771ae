package dto

import (
	"encoding/json"
	"taskBurst/internal/models/task"
	"taskBurst/internal/models/user"
	"taskBurst/internal/tasklist"
	"time"

	"github.com/google/uuid"
)

// Nullable отличает отсутствующее поле от явного null
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Null = true
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

func (r CreateTaskRequest) ToInput() task.CreateInput {
	return task.CreateInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    task.Priority(r.Priority),
		DueDate:     r.DueDate,
	}
}

// UpdateTaskRequest только разрешённые поля; остальные отклоняются декодером.
type UpdateTaskRequest struct {
	Title       *string             `json:"title"`
	Description Nullable[string]    `json:"description"`
	Priority    *string             `json:"priority"`
	DueDate     Nullable[time.Time] `json:"due_date"`
	IsCompleted *bool               `json:"is_completed"`
}

func (r UpdateTaskRequest) ToOptions() []task.PatchOption {
	var opts []task.PatchOption
	if r.Title != nil {
		opts = append(opts, task.WithTitle(*r.Title))
	}
	if r.Description.Set {
		if r.Description.Null {
			opts = append(opts, task.WithoutDescription())
		} else {
			opts = append(opts, task.WithDescription(r.Description.Value))
		}
	}
	if r.Priority != nil {
		opts = append(opts, task.WithPriority(task.Priority(*r.Priority)))
	}
	if r.DueDate.Set {
		if r.DueDate.Null {
			opts = append(opts, task.WithoutDueDate())
		} else {
			opts = append(opts, task.WithDueDate(r.DueDate.Value))
		}
	}
	if r.IsCompleted != nil {
		opts = append(opts, task.WithCompleted(*r.IsCompleted))
	}
	return opts
}

type ToggleCompleteRequest struct {
	IsCompleted *bool `json:"is_completed"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	IsOverdue   bool       `json:"is_overdue"`
	DueLabel    string     `json:"due_label,omitempty"`
}

func FromTask(t *task.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		IsOverdue:   tasklist.IsOverdue(t, now),
		DueLabel:    tasklist.DueLabel(t, now),
	}
}

func FromTaskList(tasks []*task.Task, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

type TaskListResponse struct {
	Tasks    []TaskResponse    `json:"tasks"`
	Stats    tasklist.Stats    `json:"stats"`
	Filter   string            `json:"filter"`
	Sort     string            `json:"sort"`
	Sections *SectionsResponse `json:"sections,omitempty"`
}

// SectionsResponse отфильтрованный список, разложенный на невыполненные и выполненные
type SectionsResponse struct {
	Pending   []TaskResponse `json:"pending"`
	Completed []TaskResponse `json:"completed"`
}

func FromView(v tasklist.View, now time.Time) TaskListResponse {
	return TaskListResponse{
		Tasks:  FromTaskList(v.Tasks, now),
		Stats:  v.Stats,
		Filter: string(v.Filter),
		Sort:   string(v.Sort),
	}
}

func (r TaskListResponse) WithSections(v tasklist.View, now time.Time) TaskListResponse {
	pending, completed := tasklist.Sections(v.Tasks)
	r.Sections = &SectionsResponse{
		Pending:   FromTaskList(pending, now),
		Completed: FromTaskList(completed, now),
	}
	return r
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

type SessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
	User         UserResponse `json:"user"`
}

func FromSession(s *user.Session) SessionResponse {
	return SessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		TokenType:    s.TokenType,
		User:         FromUser(s.User),
	}
}
