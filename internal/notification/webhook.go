package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
)

var (
	ErrWebhookRejected    = errors.New("webhook rejected notification")
	ErrWebhookUnavailable = errors.New("webhook unavailable")
)

type WebhookConfig struct {
	URL              string
	Timeout          time.Duration
	Attempts         int
	RetryDelay       time.Duration
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

// WebhookNotifier POSTs each message as JSON. Server errors are retried with
// exponential backoff and count towards the breaker; 4xx responses do neither.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	retrier retry.Retry[*http.Response]
	breaker circuitbreaker.CircuitBreaker[*http.Response]
}

func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	threshold := uint32(cfg.BreakerThreshold) // #nosec G115 -- positive after defaults

	return &WebhookNotifier{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
		retrier: retry.New[*http.Response](retry.Config{
			MaxAttempts:        cfg.Attempts,
			InitialDelay:       cfg.RetryDelay,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         2.0,
			NonRetryableErrors: []error{ErrWebhookRejected},
		}),
		breaker: circuitbreaker.New[*http.Response](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    cfg.BreakerTimeout,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// A 4xx means the endpoint is up and answered; only outages trip.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrWebhookRejected)
			},
		}),
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

func (w *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	_, err = w.breaker.Execute(ctx, func(ctx context.Context) (*http.Response, error) {
		return w.retrier.Do(ctx, func(ctx context.Context) (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrWebhookRejected, err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Notification-Type", string(msg.Notification.Type))

			resp, err := w.client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrWebhookUnavailable, err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return resp, nil
			case resp.StatusCode >= 500:
				return nil, fmt.Errorf("%w: status %d: %s", ErrWebhookUnavailable, resp.StatusCode, string(body))
			default:
				return nil, fmt.Errorf("%w: status %d: %s", ErrWebhookRejected, resp.StatusCode, string(body))
			}
		})
	})
	return err
}
