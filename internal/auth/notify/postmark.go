package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	"github.com/aussiebroadwan/bartab/pkg/slogx"
	"github.com/sethvargo/go-retry"
)

const (
	postmarkTokenHeader = "X-Postmark-Server-Token"
	postmarkStream      = "outbound"

	defaultPostmarkTimeout = 10 * time.Second
	defaultMaxRetries      = 3
	defaultBaseBackoff     = 200 * time.Millisecond
	maxBackoff             = 2 * time.Second
)

// PostmarkConfig configures the Postmark client.
type PostmarkConfig struct {
	BaseURL string // e.g. https://api.postmarkapp.com
	Token   domain.Secret
	Sender  domain.Email

	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client

	// MaxRetries after the first attempt. Zero means the default of 3; use a
	// negative value to disable retries.
	MaxRetries  int
	BaseBackoff time.Duration
}

// Postmark sends email through the Postmark HTTP API.
type Postmark struct {
	endpoint string
	token    domain.Secret
	sender   domain.Email
	client   *http.Client
	backoff  func() retry.Backoff
}

var _ Notifier = (*Postmark)(nil)

type postmarkRequest struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	HTMLBody      string `json:"HtmlBody"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream"`
}

func NewPostmark(cfg PostmarkConfig) (*Postmark, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("notify: invalid postmark base url %q", cfg.BaseURL)
	}
	if cfg.Token.IsZero() {
		return nil, errors.New("notify: postmark token is required")
	}
	if cfg.Sender.IsZero() {
		return nil, errors.New("notify: postmark sender is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultPostmarkTimeout}
	}

	retries := cfg.MaxRetries
	switch {
	case retries == 0:
		retries = defaultMaxRetries
	case retries < 0:
		retries = 0
	}
	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBaseBackoff
	}

	return &Postmark{
		endpoint: base.JoinPath("email").String(),
		token:    cfg.Token,
		sender:   cfg.Sender,
		client:   client,
		backoff: func() retry.Backoff {
			b := retry.NewExponential(baseBackoff)
			b = retry.WithJitterPercent(10, b)
			b = retry.WithCappedDuration(maxBackoff, b)
			return retry.WithMaxRetries(uint64(retries), b) // #nosec G115 - clamped to >= 0 above
		},
	}, nil
}

// Send posts the message, retrying transport failures, 429 and 5xx responses
// with capped exponential backoff. Other 4xx responses fail immediately.
func (p *Postmark) Send(ctx context.Context, recipient domain.Email, subject, body string) error {
	payload, err := json.Marshal(postmarkRequest{
		From:          p.sender.String(),
		To:            recipient.String(),
		Subject:       subject,
		HTMLBody:      body,
		TextBody:      body,
		MessageStream: postmarkStream,
	})
	if err != nil {
		return err
	}

	log := slogx.FromContext(ctx)
	attempt := 0
	err = retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := p.post(ctx, payload)
		var re *retryableError
		if errors.As(err, &re) {
			log.Warn("postmark send failed, retrying", "attempt", attempt, "recipient", recipient, "err", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUndeliverable, err)
	}
	return nil
}

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (p *Postmark) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(postmarkTokenHeader, p.token.Expose())

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &retryableError{err: err}
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &retryableError{err: fmt.Errorf("postmark: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))}
	default:
		return fmt.Errorf("postmark: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
}
