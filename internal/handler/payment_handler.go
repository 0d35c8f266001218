package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/examsim-api/internal/middleware"
	apperrors "github.com/yourusername/examsim-api/internal/pkg/errors"
	"github.com/yourusername/examsim-api/internal/service"
)

// PaymentHandler обрабатывает проверку платежей
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler создает новый обработчик платежей
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Verify проверяет транзакцию по ссылке и фиксирует оплату за пользователем
func (h *PaymentHandler) Verify(c *gin.Context) {
	session := middleware.SessionFromContext(c)

	result, err := h.paymentService.VerifyAndRecord(c.Request.Context(), session.UserID, c.Param("reference"))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status сообщает, есть ли у текущего пользователя подтверждённая оплата
func (h *PaymentHandler) Status(c *gin.Context) {
	session := middleware.SessionFromContext(c)

	hasPaid, err := h.paymentService.HasPaid(session.UserID)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"has_paid": hasPaid})
}

// handlePaymentError обрабатывает ошибки и возвращает соответствующий HTTP-статус
func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, service.ErrPaymentNotSuccessful) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in PaymentHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
