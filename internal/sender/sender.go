package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/speedwagon-io/satalert/internal/config"
	"github.com/speedwagon-io/satalert/internal/lib/logger/sl"
	"github.com/speedwagon-io/satalert/internal/model"
)

type Sender interface {
	Send(ctx context.Context, report *model.AlertReport) error
	Close() error
}

// permanentError marks a response that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// HTTPSender posts alert reports to a webhook.
type HTTPSender struct {
	log    *slog.Logger
	url    string
	token  string
	client *http.Client
	retry  *RetryPolicy
}

func NewHTTPSender(log *slog.Logger, cfg *config.SenderConfig) *HTTPSender {
	return &HTTPSender{
		log:    log.With(slog.String("component", "webhook")),
		url:    cfg.URL,
		token:  cfg.Token,
		client: &http.Client{Timeout: cfg.Timeout},
		retry:  NewRetryPolicy(cfg.Retry),
	}
}

func (s *HTTPSender) Send(ctx context.Context, report *model.AlertReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	return s.sendWithRetry(ctx, data)
}

func (s *HTTPSender) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *HTTPSender) sendWithRetry(ctx context.Context, data []byte) error {
	var lastErr error

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		err := s.doSend(ctx, data)
		if err == nil {
			return nil
		}

		lastErr = err
		s.log.Warn("send attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", s.retry.MaxAttempts),
			sl.Err(err),
		)

		var perm *permanentError
		if errors.As(err, &perm) {
			return err
		}

		if s.retry.ShouldRetry(attempt) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retry.Delay(attempt)):
			}
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", s.retry.MaxAttempts, lastErr)
}

func (s *HTTPSender) doSend(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
	if err != nil {
		return &permanentError{fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	statusErr := fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return &permanentError{statusErr}
	}
	return statusErr
}

// LogSender logs reports instead of sending them (dry-run).
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, report *model.AlertReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	s.log.Info("SEND",
		slog.String("report_id", report.ID),
		slog.String("run_id", report.RunID),
		slog.Int("alerts_count", len(report.Alerts)),
		slog.String("payload", string(data)),
	)

	return nil
}

func (s *LogSender) Close() error {
	return nil
}
