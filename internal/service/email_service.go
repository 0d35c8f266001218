package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendFeedbackNotification(ctx context.Context, username, email, message string) error
}

// NoopEmailService is used when email notifications are disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendFeedbackNotification(ctx context.Context, username, email, message string) error {
	log.Printf("[EmailService] noop feedback notification from=%s", email)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from       string
	adminEmail string
	client     *resend.Client
}

func NewResendEmailService(apiKey, from, adminEmail string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	if adminEmail == "" {
		return nil, fmt.Errorf("admin email is required")
	}
	return &ResendEmailService{
		from:       from,
		adminEmail: adminEmail,
		client:     resend.NewClient(apiKey),
	}, nil
}

// SendFeedbackNotification пересылает отзыв пользователя администратору
func (s *ResendEmailService) SendFeedbackNotification(ctx context.Context, username, email, message string) error {
	if message == "" {
		return fmt.Errorf("message is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.adminEmail},
		Subject: fmt.Sprintf("New feedback from %s", username),
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", username, email, message),
		Html: fmt.Sprintf("<p>From: <strong>%s</strong> &lt;%s&gt;</p><p>%s</p>",
			html.EscapeString(username), html.EscapeString(email), html.EscapeString(message)),
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithContext(ctx, params)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
