// Package notify описывает уведомления, которые видит пользователь
// после операций над задачами.
package notify

import (
	"context"
	"taskBurst/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Kind string

const KindCreated Kind = "created"
const KindUpdated Kind = "updated"
const KindCompleted Kind = "completed"
const KindDeleted Kind = "deleted"
const KindFailed Kind = "failed"
const KindOverdue Kind = "overdue"

type Variant string

const VariantDefault Variant = "default"
const VariantDestructive Variant = "destructive"

type Notification struct {
	Kind    Kind    `json:"kind"`
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Variant Variant `json:"variant"`
}

type Operation string

const OpCreate Operation = "create"
const OpUpdate Operation = "update"
const OpDelete Operation = "delete"

func Created() Notification {
	return Notification{Kind: KindCreated, Title: "Task created! ✨", Message: "Let's get it done!", Variant: VariantDefault}
}

func Updated() Notification {
	return Notification{Kind: KindUpdated, Title: "Task updated", Message: "Changes saved.", Variant: VariantDefault}
}

// Completed отдельное "праздничное" уведомление, не путать с Updated.
func Completed() Notification {
	return Notification{Kind: KindCompleted, Title: "Nice work! 🎉", Message: "Task completed!", Variant: VariantDefault}
}

func Deleted() Notification {
	return Notification{Kind: KindDeleted, Title: "Task deleted", Message: "Gone but not forgotten 👋", Variant: VariantDefault}
}

func Overdue(title string) Notification {
	return Notification{Kind: KindOverdue, Title: "Task overdue", Message: title, Variant: VariantDestructive}
}

// Failure сообщение об ошибке операции; текст ошибки передаётся как есть.
func Failure(op Operation, err error) Notification {
	title := "Couldn't update task"
	switch op {
	case OpCreate:
		title = "Couldn't create task"
	case OpDelete:
		title = "Couldn't delete task"
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Notification{Kind: KindFailed, Title: title, Message: msg, Variant: VariantDestructive}
}

type Sink interface {
	Publish(ctx context.Context, userID uuid.UUID, n Notification) error
}

// LogSink пишет уведомления в лог; используется фоновыми задачами.
type LogSink struct{}

func (LogSink) Publish(ctx context.Context, userID uuid.UUID, n Notification) error {
	logger.Info("Notify: уведомление",
		zap.String("user_id", userID.String()),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
		zap.String("message", n.Message))
	return nil
}
