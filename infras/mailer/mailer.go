package mailer

//go:generate go run go.uber.org/mock/mockgen -source=./mailer.go -destination=./mocks/mailer_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"otms/config"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const brevoURL = "https://api.brevo.com/v3/smtp/email"

const defaultTimeoutSeconds = 10

// Mailer delivers a single outbound email. Implementations must respect the
// context deadline so a stalled provider cannot wedge the notification worker.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, htmlContent string) error
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

type brevoMailer struct {
	apiKey      string
	senderEmail string
	senderName  string
	client      *http.Client
}

func New(cfg *config.Config) Mailer {
	timeout := cfg.Mailer.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}

	if cfg.Mailer.APIKey == "" || cfg.Mailer.SenderEmail == "" {
		log.Warn().Msg("Mailer not configured, outbound emails will be skipped")
	} else {
		log.Info().Str("sender", cfg.Mailer.SenderEmail).Msg("Mailer initialized")
	}

	return &brevoMailer{
		apiKey:      cfg.Mailer.APIKey,
		senderEmail: cfg.Mailer.SenderEmail,
		senderName:  cfg.Mailer.SenderName,
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

func (m *brevoMailer) Send(ctx context.Context, toEmail, subject, htmlContent string) error {
	if m.apiKey == "" || m.senderEmail == "" {
		log.Warn().Str("to", toEmail).Msg("mailer not configured, skipping email")

		return nil
	}

	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %q", toEmail)
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": m.senderName, "email": m.senderEmail},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		log.Error().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("mail provider rejected email")

		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	log.Info().Str("to", toEmail).Str("subject", subject).Msg("email sent")

	return nil
}
