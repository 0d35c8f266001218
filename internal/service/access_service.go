package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/domain/repository"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// AuthStatus описывает состояние вызывающего для проверки доступа.
// Собирается снаружи (middleware/хендлер), чтобы Resolve оставался чистой функцией.
type AuthStatus struct {
	Authenticated bool
	HasPaid       bool
}

// AccessService разрешает доступ к курсу для заданного режима тренажёра
type AccessService struct {
	paymentRepo repository.PaymentRepository
}

// NewAccessService создает новый сервис контроля доступа
func NewAccessService(paymentRepo repository.PaymentRepository) *AccessService {
	return &AccessService{paymentRepo: paymentRepo}
}

// Resolve возвращает nil, если курс доступен в данном режиме, иначе ошибку доступа.
// Функция не имеет побочных эффектов: всё состояние передаётся вызывающим.
func (s *AccessService) Resolve(courseCode string, mode entity.SimulatorMode, status AuthStatus) error {
	switch mode {
	case entity.ModeFree:
		if !isFreeCourse(courseCode) {
			return fmt.Errorf("%w: %s", ErrCourseNotFree, courseCode)
		}
		return nil
	case entity.ModePaid:
		if !status.Authenticated {
			return fmt.Errorf("%w: login required for the paid simulator", apperrors.ErrUnauthorized)
		}
		if !status.HasPaid {
			return fmt.Errorf("%w: paid simulator requires a confirmed payment", apperrors.ErrPaymentRequired)
		}
		return nil
	case entity.ModeStudy:
		// Учебный режим открыт: самопроверка без оплаты
		return nil
	default:
		return fmt.Errorf("%w: unknown simulator mode %q", apperrors.ErrValidation, mode)
	}
}

// StatusFor собирает AuthStatus по состоянию сессии.
// Ошибка чтения платежей трактуется как "не оплачено" и логируется.
func (s *AccessService) StatusFor(session *entity.Session) AuthStatus {
	status := AuthStatus{Authenticated: session.IsAuthenticated()}
	if !status.Authenticated {
		return status
	}
	paid, err := s.paymentRepo.HasPaid(session.UserID)
	if err != nil {
		log.Printf("[AccessService] Ошибка при проверке оплаты для пользователя ID=%d: %v", session.UserID, err)
		return status
	}
	status.HasPaid = paid
	return status
}

// isFreeCourse проверяет, входит ли предметный префикс курса в бесплатный список
func isFreeCourse(courseCode string) bool {
	code := strings.ToUpper(strings.TrimSpace(courseCode))
	for _, prefix := range entity.FreeCoursePrefixes {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}
