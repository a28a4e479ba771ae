package service

import (
	"errors"
	"fmt"
	"taskBurst/internal/models/task"

	"github.com/google/uuid"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeNotFound         = "NOT_FOUND"
	CodeBackend          = "BACKEND_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil && b.Err.Error() != b.Message {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

// Cause то, что увидит пользователь в уведомлении об ошибке
func (b *BusinessError) Cause() error {
	if b.Err != nil {
		return b.Err
	}
	return errors.New(b.Message)
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewValidationError(errs task.ValidationErrors) *BusinessError {
	details := make([]Detail, 0, len(errs))
	for field, reason := range errs {
		details = append(details, ToDetail(string(field), string(reason)))
	}
	return NewBusinessError(CodeValidation, "Неверные значения полей задачи", details...)
}

func NewNotAuthenticated() *BusinessError {
	return NewBusinessError(CodeNotAuthenticated, "Необходимо войти в аккаунт")
}

func NewNotFound(id uuid.UUID) *BusinessError {
	return NewBusinessError(CodeNotFound, fmt.Sprintf("Задача %s не найдена", id), ToDetail("id", id.String()))
}

// NewBackendError сообщение хранилища передаётся клиенту без изменений
func NewBackendError(err error) *BusinessError {
	busErr := NewBusinessError(CodeBackend, err.Error())
	busErr.Err = err
	return busErr
}

func AsBusinessError(err error) (*BusinessError, bool) {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr, true
	}
	return nil, false
}
