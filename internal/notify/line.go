package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const linePushEndpoint = "https://api.line.me/v2/bot/message/push"

// LineSender delivers messages via the LINE Messaging API push endpoint.
type LineSender struct {
	token    string
	to       string
	endpoint string
	client   *http.Client
}

// NewLineSender creates a LineSender pushing to the given user or group ID,
// authenticated with the channel access token. It uses a default HTTP client
// with a 5-second timeout.
func NewLineSender(token, to string) *LineSender {
	return &LineSender{
		token:    token,
		to:       to,
		endpoint: linePushEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

// Send pushes a single text message. Any 2xx response counts as delivered.
func (s *LineSender) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(linePushRequest{
		To:       s.to,
		Messages: []lineMessage{{Type: "text", Text: message}},
	})
	if err != nil {
		return fmt.Errorf("line: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("line: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("line: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("line: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Name returns the sender identifier.
func (s *LineSender) Name() string {
	return "line"
}
