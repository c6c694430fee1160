// Пакет service — бизнес-логика сервиса записи опросов:
// загрузка, выдача и удаление записей, чтение журнала, сверка хранилища.
package service

import (
	"fmt"
	"net/http"

	apierrors "github.com/bigkaa/survey-recorder/internal/api/errors"
)

// Error — ошибка сервисного слоя с HTTP-кодом и кодом API.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func notFound(format string, args ...any) *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       apierrors.CodeNotFound,
		Message:    fmt.Sprintf(format, args...),
	}
}

func invalidFilename() *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       apierrors.CodeInvalidFilename,
		Message:    "Invalid filename",
	}
}

func validationError(format string, args ...any) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       apierrors.CodeValidationError,
		Message:    fmt.Sprintf(format, args...),
	}
}

func internalError(message string) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       apierrors.CodeInternalError,
		Message:    message,
	}
}
