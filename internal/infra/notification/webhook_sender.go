package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	deliveryContext "pointshop/internal/delivery/context"
	"pointshop/internal/domain/service"

	"github.com/pkg/errors"
)

// webhookSender POSTs each message as JSON to a fixed URL.
type webhookSender struct {
	url        string
	httpClient *http.Client
}

type webhookPayload struct {
	Text   string `json:"text"`
	SentAt string `json:"sent_at"`
}

func NewWebhookSender(url string, timeout time.Duration) service.MessageSender {
	return &webhookSender{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *webhookSender) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(webhookPayload{
		Text:   message,
		SentAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID, ok := deliveryContext.GetRequestIDFromContext(ctx); ok {
		req.Header.Set(deliveryContext.HeaderXRequestID, requestID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("webhook returned non-success status: %d", resp.StatusCode)
	}

	return nil
}

func (s *webhookSender) Close() error {
	s.httpClient.CloseIdleConnections()

	return nil
}
