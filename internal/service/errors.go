package service

import (
	"errors"
	"fmt"
	repo "taskBoard/internal/repository"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotSupported = "NOT_SUPPORTED"
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
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
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

func NewNotFound(resource, id string) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %s не найден(а)", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason),
	)
}

func NewUnauthorized(reason string) *BusinessError {
	return NewBusinessError(CodeUnauthorized, reason)
}

func NewNotSupported(operation, backend string) *BusinessError {
	return NewBusinessError(CodeNotSupported,
		fmt.Sprintf("операция %s недоступна для хранилища %s", operation, backend),
		ToDetail("operation", operation),
		ToDetail("backend", backend),
	)
}

// fromStore переводит ошибки хранилища в бизнес-ошибки, остальное оборачивает как есть
func fromStore(err error, resource, id, operation string) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return NewNotFound(resource, id)
	case errors.Is(err, repo.ErrProjectNotFound):
		return NewValidationError("projectId", "проект не существует")
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}
