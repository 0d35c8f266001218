package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourusername/examsim-api/internal/config"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	"github.com/yourusername/examsim-api/internal/domain/repository"
	"github.com/yourusername/examsim-api/internal/handler/dto"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// PaymentService проверяет транзакции в Paystack и фиксирует оплату.
// Каждая платёжная ссылка (reference) засчитывается не более одного раза.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	cfg         config.PaystackConfig
	httpClient  *http.Client
}

// NewPaymentService создает новый платёжный сервис
func NewPaymentService(paymentRepo repository.PaymentRepository, cfg config.PaystackConfig) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// paystackVerifyResponse представляет ответ GET /transaction/verify/{reference}
type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"` // в кобо
	} `json:"data"`
}

// VerifyAndRecord проверяет транзакцию по ссылке и записывает оплату пользователю.
// Повторная проверка уже засчитанной ссылки тем же пользователем — идемпотентный
// успех; чужая ссылка отклоняется, двойного начисления не происходит.
func (s *PaymentService) VerifyAndRecord(ctx context.Context, userID uint, reference string) (*dto.PaymentVerifyResponse, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: payment reference is required", apperrors.ErrValidation)
	}

	existing, err := s.paymentRepo.GetByReference(reference)
	if err == nil {
		if existing.UserID != userID {
			return nil, fmt.Errorf("%w: reference already used by another account", apperrors.ErrConflict)
		}
		if existing.IsPaid() {
			return &dto.PaymentVerifyResponse{
				Status:    existing.Status,
				Reference: existing.Reference,
				Amount:    existing.Amount,
			}, nil
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[PaymentService.VerifyAndRecord] Failed to check reference %s: %v", reference, err)
		return nil, err
	}

	verified, err := s.verifyWithPaystack(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !verified.Status || verified.Data.Status != "success" {
		return nil, fmt.Errorf("%w: paystack status=%s", ErrPaymentNotSuccessful, verified.Data.Status)
	}

	payment := &entity.Payment{
		UserID:    userID,
		Amount:    verified.Data.Amount / 100, // кобо -> найра
		Status:    entity.PaymentStatusPaid,
		Reference: reference,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		// Параллельная проверка той же ссылки могла успеть первой
		if errors.Is(err, apperrors.ErrConflict) {
			credited, getErr := s.paymentRepo.GetByReference(reference)
			if getErr == nil && credited.UserID == userID && credited.IsPaid() {
				return &dto.PaymentVerifyResponse{
					Status:    credited.Status,
					Reference: credited.Reference,
					Amount:    credited.Amount,
				}, nil
			}
			return nil, fmt.Errorf("%w: reference already used", apperrors.ErrConflict)
		}
		log.Printf("[PaymentService.VerifyAndRecord] Failed to record payment %s: %v", reference, err)
		return nil, err
	}

	log.Printf("[PaymentService.VerifyAndRecord] Payment recorded: user=%d reference=%s amount=%d", userID, reference, payment.Amount)
	return &dto.PaymentVerifyResponse{
		Status:    payment.Status,
		Reference: payment.Reference,
		Amount:    payment.Amount,
	}, nil
}

// HasPaid сообщает, есть ли у пользователя подтверждённая оплата
func (s *PaymentService) HasPaid(userID uint) (bool, error) {
	return s.paymentRepo.HasPaid(userID)
}

func (s *PaymentService) verifyWithPaystack(ctx context.Context, reference string) (*paystackVerifyResponse, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create paystack verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SecretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: unknown reference %s", apperrors.ErrNotFound, reference)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: paystack verify status=%d body=%s", ErrPaymentNotSuccessful, resp.StatusCode, string(body))
	}

	var payload paystackVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse paystack verify response: %w", err)
	}
	return &payload, nil
}
