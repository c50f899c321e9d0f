package sms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mmynk/blast/internal/secrets"
)

// DefaultTwilioBaseURL is the production Twilio REST endpoint.
const DefaultTwilioBaseURL = "https://api.twilio.com"

const messagesPath = "/2010-04-01/Accounts/{accountSid}/Messages.json"

// TwilioOptions tune the transport. Zero values use defaults.
type TwilioOptions struct {
	BaseURL string
	Timeout time.Duration
}

// TwilioSender sends SMS through the Twilio Messages API.
type TwilioSender struct {
	http       *resty.Client
	accountSID string
	from       string
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// NewTwilioSender reads credentials once from provider and returns a sender
// that reuses them for every call. Any missing credential is an ErrFatalInit.
func NewTwilioSender(ctx context.Context, provider secrets.Provider, opts TwilioOptions) (*TwilioSender, error) {
	creds := make(map[string]string, 3)
	for _, name := range []string{secrets.TwilioAccountSID, secrets.TwilioAuthToken, secrets.TwilioFromNumber} {
		v, err := provider.Secret(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFatalInit, err)
		}
		creds[name] = v
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultTwilioBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	// Retries are off: a failed send is final for this broadcast.
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetBasicAuth(creds[secrets.TwilioAccountSID], creds[secrets.TwilioAuthToken]).
		SetHeader("Accept", "application/json")

	slog.Info("Twilio sender initialized", "base_url", opts.BaseURL, "from", creds[secrets.TwilioFromNumber])

	return &TwilioSender{
		http:       client,
		accountSID: creds[secrets.TwilioAccountSID],
		from:       creds[secrets.TwilioFromNumber],
	}, nil
}

// Send posts one message. Any non-2xx response is a *SendError.
func (t *TwilioSender) Send(ctx context.Context, phoneNumber, message string) error {
	var (
		result  twilioMessage
		failure twilioError
	)
	resp, err := t.http.R().
		SetContext(ctx).
		SetPathParam("accountSid", t.accountSID).
		SetFormData(map[string]string{
			"From": t.from,
			"To":   phoneNumber,
			"Body": message,
		}).
		SetResult(&result).
		SetError(&failure).
		Post(messagesPath)
	if err != nil {
		return &SendError{PhoneNumber: phoneNumber, Reason: err.Error()}
	}

	if resp.StatusCode() >= 300 {
		reason := failure.Message
		if reason == "" {
			reason = resp.Status()
		}
		return &SendError{
			PhoneNumber: phoneNumber,
			Status:      resp.StatusCode(),
			Code:        failure.Code,
			Reason:      reason,
		}
	}

	slog.Debug("SMS queued", "phone_number", phoneNumber, "sid", result.SID, "status", result.Status)
	return nil
}
