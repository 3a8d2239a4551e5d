package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tojiinoue/kanjikun/internal/config"
	"github.com/tojiinoue/kanjikun/internal/pkg/logger"
)

// Email は送信するメールの内容
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

// Mailer はメール送信のインターフェース
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// ResendMailer はResend APIを使ってメールを送信する
type ResendMailer struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

// NewResendMailer は新しいResendMailerインスタンスを作成する
func NewResendMailer(cfg config.MailConfig) *ResendMailer {
	return &ResendMailer{
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		endpoint: cfg.Endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

// Send はメールを送信する
func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	body, err := json.Marshal(resendRequest{
		From:    m.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Text:    email.Text,
		HTML:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("メールリクエストの生成に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("メールリクエストの生成に失敗: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("メール送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("メール送信に失敗: status=%d body=%s", resp.StatusCode, respBody)
	}

	return nil
}

// NopMailer はメール設定が無い環境向けの何もしないMailer
type NopMailer struct{}

// Send は送信をスキップしてログだけ残す
func (NopMailer) Send(_ context.Context, email Email) error {
	logger.Debug("メール送信をスキップ",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
	)
	return nil
}
