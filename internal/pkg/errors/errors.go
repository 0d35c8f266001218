package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (нет сессии, неверный пароль).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (дубликат email, повторная платёжная ссылка).
	ErrConflict = errors.New("resource state conflict")

	// ErrPaymentRequired используется, когда запрошенный тариф требует подтверждённой оплаты.
	ErrPaymentRequired = errors.New("payment required")
)
