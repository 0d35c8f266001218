package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	// ErrCourseNotFree возвращается, когда курс недоступен в бесплатном тренажёре
	ErrCourseNotFree = errors.New("this course is not available in the free simulator")

	// ErrNoCourseSelected возвращается при отправке ответов без настроенной попытки
	ErrNoCourseSelected = errors.New("no course selected")

	// ErrGoogleTokenVerificationFailed используется хендлерами для стабильной диагностики OAuth-потока
	ErrGoogleTokenVerificationFailed = errors.New("google_token_verification_failed")

	// ErrPaymentNotSuccessful возвращается, когда шлюз подтвердил транзакцию со статусом, отличным от success
	ErrPaymentNotSuccessful = errors.New("payment was not successful")
)
