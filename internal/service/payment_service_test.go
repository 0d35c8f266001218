package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/examsim-api/internal/config"
	"github.com/yourusername/examsim-api/internal/domain/entity"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
)

// newPaystackStub поднимает тестовый сервер, отвечающий как Paystack verify
func newPaystackStub(t *testing.T, txStatus string, amountKobo int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/transaction/verify/", "Неверный путь запроса к шлюзу")
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status": true, "message": "Verification successful", "data": {"status": %q, "amount": %d}}`, txStatus, amountKobo)
	}))
}

func TestPaymentService_VerifyAndRecord_Success(t *testing.T) {
	// Arrange
	stub := newPaystackStub(t, "success", 500000) // 5000.00 в кобо
	defer stub.Close()

	mockPaymentRepo := new(MockPaymentRepository)
	mockPaymentRepo.On("GetByReference", "ref-001").Return(nil, apperrors.ErrNotFound)
	mockPaymentRepo.On("Create", mock.MatchedBy(func(p *entity.Payment) bool {
		return p.UserID == 7 && p.Reference == "ref-001" &&
			p.Status == entity.PaymentStatusPaid && p.Amount == 5000
	})).Return(nil)

	paymentService := NewPaymentService(mockPaymentRepo, config.PaystackConfig{
		SecretKey: "sk_test_secret",
		BaseURL:   stub.URL,
	})

	// Act
	result, err := paymentService.VerifyAndRecord(context.Background(), 7, "ref-001")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, result.Status)
	assert.Equal(t, int64(5000), result.Amount, "Сумма переводится из кобо в основную валюту")
	mockPaymentRepo.AssertExpectations(t)
}

func TestPaymentService_VerifyAndRecord_ReplayIsIdempotent(t *testing.T) {
	// Arrange: ссылка уже засчитана этому пользователю
	mockPaymentRepo := new(MockPaymentRepository)
	mockPaymentRepo.On("GetByReference", "ref-001").Return(&entity.Payment{
		ID:        1,
		UserID:    7,
		Amount:    5000,
		Status:    entity.PaymentStatusPaid,
		Reference: "ref-001",
	}, nil)

	paymentService := NewPaymentService(mockPaymentRepo, config.PaystackConfig{
		SecretKey: "sk_test_secret",
		BaseURL:   "http://127.0.0.1:0", // до шлюза дойти не должны
	})

	// Act
	result, err := paymentService.VerifyAndRecord(context.Background(), 7, "ref-001")

	// Assert: идемпотентный успех без второго начисления
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, result.Status)
	mockPaymentRepo.AssertNotCalled(t, "Create")
}

func TestPaymentService_VerifyAndRecord_ForeignReferenceRejected(t *testing.T) {
	// Arrange: ссылка засчитана другому пользователю
	mockPaymentRepo := new(MockPaymentRepository)
	mockPaymentRepo.On("GetByReference", "ref-001").Return(&entity.Payment{
		ID:        1,
		UserID:    3,
		Status:    entity.PaymentStatusPaid,
		Reference: "ref-001",
	}, nil)

	paymentService := NewPaymentService(mockPaymentRepo, config.PaystackConfig{
		SecretKey: "sk_test_secret",
		BaseURL:   "http://127.0.0.1:0",
	})

	// Act
	_, err := paymentService.VerifyAndRecord(context.Background(), 7, "ref-001")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	mockPaymentRepo.AssertNotCalled(t, "Create")
}

func TestPaymentService_VerifyAndRecord_FailedTransaction(t *testing.T) {
	// Arrange
	stub := newPaystackStub(t, "failed", 500000)
	defer stub.Close()

	mockPaymentRepo := new(MockPaymentRepository)
	mockPaymentRepo.On("GetByReference", "ref-002").Return(nil, apperrors.ErrNotFound)

	paymentService := NewPaymentService(mockPaymentRepo, config.PaystackConfig{
		SecretKey: "sk_test_secret",
		BaseURL:   stub.URL,
	})

	// Act
	_, err := paymentService.VerifyAndRecord(context.Background(), 7, "ref-002")

	// Assert: неуспешная транзакция не записывается
	assert.ErrorIs(t, err, ErrPaymentNotSuccessful)
	mockPaymentRepo.AssertNotCalled(t, "Create")
}

func TestPaymentService_VerifyAndRecord_EmptyReference(t *testing.T) {
	paymentService := NewPaymentService(new(MockPaymentRepository), config.PaystackConfig{
		SecretKey: "sk_test_secret",
		BaseURL:   "http://127.0.0.1:0",
	})

	_, err := paymentService.VerifyAndRecord(context.Background(), 7, "   ")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPaymentService_VerifyAndRecord_ConcurrentDuplicate(t *testing.T) {
	// Arrange: Create проигрывает гонку, но ссылка уже засчитана этому же пользователю
	stub := newPaystackStub(t, "success", 500000)
	defer stub.Close()

	mockPaymentRepo := new(MockPaymentRepository)
	mockPaymentRepo.On("GetByReference", "ref-003").Return(nil, apperrors.ErrNotFound).Once()
	mockPaymentRepo.On("Create", mock.Anything).Return(apperrors.ErrConflict)
	mockPaymentRepo.On("GetByReference", "ref-003").Return(&entity.Payment{
		UserID:    7,
		Amount:    5000,
		Status:    entity.PaymentStatusPaid,
		Reference: "ref-003",
	}, nil)

	paymentService := NewPaymentService(mockPaymentRepo, config.PaystackConfig{
		SecretKey: "sk_test_secret",
		BaseURL:   stub.URL,
	})

	// Act
	result, err := paymentService.VerifyAndRecord(context.Background(), 7, "ref-003")

	// Assert
	require.NoError(t, err, "Проигранная гонка с тем же пользователем - идемпотентный успех")
	assert.Equal(t, int64(5000), result.Amount)
}
