package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	appointmentsPath     = "/webhook/appointments"
	scheduledReportsPath = "/webhook/scheduled-reports"

	headerSecret = "X-Webhook-Secret"
	userAgent    = "AgendaAPI/1.0"
)

// ErrNotConfigured is returned when no base URL is set; callers treat it as a
// warning, not a delivery failure.
var ErrNotConfigured = errors.New("webhook base URL not configured")

type Config struct {
	BaseURL string
	Secret  string
	Timeout time.Duration
}

// Client posts JSON payloads to the external automation endpoints. Every send
// carries a hard timeout so a slow receiver cannot stall the dispatcher.
type Client struct {
	cfg    Config
	http   *http.Client
	log    *DeliveryLog
	logger zerolog.Logger
}

func NewClient(cfg Config, deliveryLog *DeliveryLog, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    deliveryLog,
		logger: logger.With().Str("component", "webhook").Logger(),
	}
}

func (c *Client) SendAppointment(ctx context.Context, payload *AppointmentPayload) error {
	err := c.post(ctx, appointmentsPath, payload.AppointmentID, payload)
	c.record(payload.AppointmentID, err)
	return err
}

func (c *Client) SendScheduledReport(ctx context.Context, payload *ScheduledReportPayload) error {
	err := c.post(ctx, scheduledReportsPath, payload.ScheduledReportID, payload)
	c.record(payload.ScheduledReportID, err)
	return err
}

func (c *Client) post(ctx context.Context, path, refID string, payload interface{}) error {
	if c.cfg.BaseURL == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.cfg.Secret != "" {
		req.Header.Set(headerSecret, c.cfg.Secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("webhook request timed out after %s", c.cfg.Timeout)
		}
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook failed with status: %d %s", resp.StatusCode, resp.Status)
	}

	c.logger.Info().Str("path", path).Str("ref_id", refID).Msg("webhook delivered")
	return nil
}

func (c *Client) record(refID string, err error) {
	if c.log == nil {
		return
	}
	switch {
	case err == nil:
		c.log.Append(refID, StatusSuccess, map[string]interface{}{"url": c.cfg.BaseURL})
	case errors.Is(err, ErrNotConfigured):
		c.log.Append(refID, StatusWarning, map[string]interface{}{"message": err.Error()})
	default:
		c.logger.Error().Err(err).Str("ref_id", refID).Msg("webhook delivery failed")
		c.log.Append(refID, StatusError, map[string]interface{}{"error": err.Error()})
	}
}

// Log exposes the delivery log for the debug endpoint.
func (c *Client) Log() *DeliveryLog {
	return c.log
}
