// Package sms provides broadcast.Sender implementations.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrFatalInit marks a transport that could not be constructed. The process
// should not start without one.
var ErrFatalInit = errors.New("sms transport unavailable")

// SendError is a rejected or failed delivery attempt.
type SendError struct {
	PhoneNumber string
	Status      int
	Code        int
	Reason      string
}

func (e *SendError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("send to %s failed: %s", e.PhoneNumber, e.Reason)
	}
	return fmt.Sprintf("send to %s failed (status %d, code %d): %s", e.PhoneNumber, e.Status, e.Code, e.Reason)
}

// LogSender only logs messages. Used for dry runs and local development.
type LogSender struct{}

func (LogSender) Send(_ context.Context, phoneNumber, message string) error {
	slog.Info("SMS (log only)", "phone_number", phoneNumber, "message", message)
	return nil
}
