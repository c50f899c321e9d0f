// Package broadcast sends one message to a sequence of recipients.
package broadcast

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/blast/internal/models"
)

// ErrEmptyMessage is returned when a broadcast has no message text.
var ErrEmptyMessage = errors.New("message is required")

// Sender delivers one SMS. Implementations own their own timeouts.
type Sender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, phoneNumber, message string) error

func (f SenderFunc) Send(ctx context.Context, phoneNumber, message string) error {
	return f(ctx, phoneNumber, message)
}

// Status is the terminal state of a dispatch call.
type Status string

const (
	StatusRejected  Status = "rejected"
	StatusPreview   Status = "preview"
	StatusCompleted Status = "completed"
)

// Outcome records what happened for one recipient.
type Outcome struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Sent        bool   `json:"sent"`
	Error       string `json:"error,omitempty"`
}

// Summary reports a dispatch call.
type Summary struct {
	BroadcastID  string    `json:"broadcast_id"`
	Status       Status    `json:"status"`
	Attempted    int       `json:"attempted_count"`
	Succeeded    int       `json:"success_count"`
	Failed       int       `json:"failure_count"`
	LookupErrors int       `json:"lookup_error_count"`
	Recipients   []Outcome `json:"recipients,omitempty"`
	MissingIDs   []string  `json:"missing_ids,omitempty"`
}

// Dispatcher drives sends through a Sender.
type Dispatcher struct {
	sender Sender
}

// NewDispatcher creates a Dispatcher. The sender is constructed once per
// process and shared by every call.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

func validate(message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Dispatch sends message to each recipient in order. A failed send is logged,
// counted and not retried; the loop always runs to the end. An empty message
// is rejected before any recipient is read.
func (d *Dispatcher) Dispatch(ctx context.Context, message string, recipients iter.Seq2[models.Recipient, error]) (*Summary, error) {
	summary := &Summary{BroadcastID: uuid.NewString()}
	if err := validate(message); err != nil {
		summary.Status = StatusRejected
		slog.Warn("Broadcast rejected", "broadcast_id", summary.BroadcastID, "error", err)
		return summary, err
	}

	start := time.Now()
	for r, err := range recipients {
		if err != nil {
			slog.Error("Recipient lookup failed", "broadcast_id", summary.BroadcastID, "error", err)
			summary.LookupErrors++
			continue
		}

		summary.Attempted++
		outcome := Outcome{ID: r.ID, PhoneNumber: r.PhoneNumber}
		if err := d.sender.Send(ctx, r.PhoneNumber, message); err != nil {
			slog.Warn("SMS send failed",
				"broadcast_id", summary.BroadcastID,
				"client_id", r.ID,
				"phone_number", r.PhoneNumber,
				"error", err,
			)
			summary.Failed++
			outcome.Error = err.Error()
		} else {
			summary.Succeeded++
			outcome.Sent = true
		}
		summary.Recipients = append(summary.Recipients, outcome)
	}

	summary.Status = StatusCompleted
	slog.Info("Broadcast completed",
		"broadcast_id", summary.BroadcastID,
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

// Preview lists the recipients a dispatch would reach without sending.
func (d *Dispatcher) Preview(ctx context.Context, message string, recipients iter.Seq2[models.Recipient, error]) (*Summary, error) {
	summary := &Summary{BroadcastID: uuid.NewString()}
	if err := validate(message); err != nil {
		summary.Status = StatusRejected
		return summary, err
	}

	for r, err := range recipients {
		if err != nil {
			slog.Error("Recipient lookup failed", "broadcast_id", summary.BroadcastID, "error", err)
			summary.LookupErrors++
			continue
		}
		summary.Recipients = append(summary.Recipients, Outcome{ID: r.ID, PhoneNumber: r.PhoneNumber})
	}
	summary.Status = StatusPreview
	return summary, nil
}
