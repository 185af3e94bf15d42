package sink

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/djlord-it/easy-remind/internal/domain"
)

// WebhookSink delivers through an HTTP bridge exposed by the host (the
// mobile-embedded webview case). Each operation is one signed JSON POST to
// an endpoint under the bridge base URL:
//
//	POST {base}/notify     Notify
//	POST {base}/schedule   ScheduleAt
//	POST {base}/cancel     Cancel
//	POST {base}/scheduled  ListScheduled (response body carries the list)
type WebhookSink struct {
	baseURL string
	secret  string
	timeout time.Duration
	client  *http.Client
}

func NewWebhookSink(baseURL, secret string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookSink{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		timeout: timeout,
		client:  &http.Client{},
	}
}

type scheduleRequest struct {
	ID          int     `json:"id"`
	TimestampMs int64   `json:"timestamp_ms"`
	Payload     Payload `json:"payload"`
}

type cancelRequest struct {
	ID int `json:"id"`
}

type scheduledResponse struct {
	Alarms []struct {
		ID          int   `json:"id"`
		TimestampMs int64 `json:"timestamp_ms"`
	} `json:"alarms"`
}

func (s *WebhookSink) Notify(ctx context.Context, payload Payload) error {
	_, err := s.post(ctx, "/notify", payload)
	return err
}

func (s *WebhookSink) ScheduleAt(ctx context.Context, at time.Time, id int, payload Payload) error {
	req := scheduleRequest{
		ID:          id,
		TimestampMs: at.UnixMilli(),
		Payload:     payload,
	}
	_, err := s.post(ctx, "/schedule", req)
	return err
}

func (s *WebhookSink) Cancel(ctx context.Context, id int) error {
	_, err := s.post(ctx, "/cancel", cancelRequest{ID: id})
	return err
}

func (s *WebhookSink) ListScheduled(ctx context.Context) ([]domain.ScheduledAlarm, error) {
	body, err := s.post(ctx, "/scheduled", struct{}{})
	if err != nil {
		return nil, err
	}

	var resp scheduledResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode scheduled: %v", ErrUnavailable, err)
	}

	alarms := make([]domain.ScheduledAlarm, 0, len(resp.Alarms))
	for _, a := range resp.Alarms {
		alarms = append(alarms, domain.ScheduledAlarm{
			ID:        a.ID,
			Timestamp: time.UnixMilli(a.TimestampMs),
		})
	}
	return alarms, nil
}

// post sends a signed JSON request and returns the response body.
// Headers: X-EasyRemind-Signature carries the hex HMAC-SHA256 of the body.
func (s *WebhookSink) post(ctx context.Context, path string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctxTimeout, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-EasyRemind-Signature", computeSignature(s.secret, body))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}
	return respBody, nil
}

func computeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature is for bridge implementations to verify incoming requests.
func VerifySignature(secret string, body []byte, signature string) bool {
	expected := computeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
