package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"itgportal/internal/adapters/email"
	"itgportal/internal/domain/outbox"
)

// ErrNoticeQueued marks a notice whose delivery failed but was queued for retry.
var ErrNoticeQueued = errors.New("notice queued for retry")

// NoticeOutbox queues undelivered notices.
type NoticeOutbox interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// NoticeOutboxForRetry is what the retry worker needs from the outbox store.
type NoticeOutboxForRetry interface {
	NoticeOutbox
	ListPending(ctx context.Context, limit int) ([]outbox.Entry, error)
}

// noticePayload is the stored form of an email.Message.
type noticePayload struct {
	To      []string `json:"to"`
	From    string   `json:"from,omitempty"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	ReplyTo string   `json:"replyTo,omitempty"`
}

func encodeNotice(msg email.Message) (string, error) {
	b, err := json.Marshal(noticePayload{To: msg.To, From: msg.From, Subject: msg.Subject, Body: msg.Body, ReplyTo: msg.ReplyTo})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeNotice(payload string) (email.Message, error) {
	var p noticePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return email.Message{}, fmt.Errorf("decode notice payload: %w", err)
	}
	return email.Message{To: p.To, From: p.From, Subject: p.Subject, Body: p.Body, ReplyTo: p.ReplyTo}, nil
}

// queueNotice stores msg after its first delivery failed with sendErr.
func queueNotice(ctx context.Context, q NoticeOutbox, id string, now time.Time, msg email.Message, sendErr error) error {
	payload, err := encodeNotice(msg)
	if err != nil {
		return err
	}
	entry := outbox.NewEntry(id, outbox.KindTimeOffNotice, payload, now, sendErr)
	if err := entry.Validate(); err != nil {
		return err
	}
	return q.Save(ctx, entry)
}

// --- Retry Notices ---

// RetryNoticesDeps holds dependencies for RetryNotices.
type RetryNoticesDeps struct {
	Outbox    NoticeOutboxForRetry
	Sender    email.Sender
	Now       func() time.Time
	BaseDelay time.Duration // default 1m
	MaxDelay  time.Duration // default 1h
	BatchSize int           // default 50
}

// RetryNoticesResult counts what one pass did.
type RetryNoticesResult struct {
	Sent    int
	Failed  int
	Skipped int
}

// ExecuteRetryNotices resends queued notices whose backoff has elapsed.
// PRE: deps.Outbox and deps.Sender are set
// POST: Each due entry is attempted once and saved as sent, pending or failed
func ExecuteRetryNotices(ctx context.Context, deps RetryNoticesDeps) (RetryNoticesResult, error) {
	base, max, batch := deps.BaseDelay, deps.MaxDelay, deps.BatchSize
	if base <= 0 {
		base = time.Minute
	}
	if max <= 0 {
		max = time.Hour
	}
	if batch <= 0 {
		batch = 50
	}

	entries, err := deps.Outbox.ListPending(ctx, batch)
	if err != nil {
		return RetryNoticesResult{}, fmt.Errorf("list pending notices: %w", err)
	}

	var result RetryNoticesResult
	now := deps.Now()
	for _, entry := range entries {
		if !entry.Due(now, base, max) {
			result.Skipped++
			continue
		}
		entry.MarkAttempt(now)

		msg, err := decodeNotice(entry.Payload)
		if err == nil {
			var res email.SendResult
			if res, err = deps.Sender.Send(ctx, msg); err == nil {
				entry.MarkSent(res.MessageID)
			}
		}
		if err != nil {
			entry.MarkFailed(err)
			result.Failed++
			slog.Warn("notice_event", "event", "notice_retry_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err)
		} else {
			result.Sent++
			slog.Info("notice_event", "event", "notice_retry_sent", "entry_id", entry.ID, "attempt", entry.Attempts, "message_id", entry.MessageID)
		}

		if err := deps.Outbox.Save(ctx, entry); err != nil {
			return result, fmt.Errorf("save notice %s: %w", entry.ID, err)
		}
	}
	return result, nil
}

// StartNoticeRetryWorker runs ExecuteRetryNotices every interval until the returned stop func is called.
func StartNoticeRetryWorker(ctx context.Context, deps RetryNoticesDeps, interval time.Duration) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := ExecuteRetryNotices(ctx, deps); err != nil {
					slog.Error("notice_event", "event", "notice_retry_pass_failed", "error", err)
				}
			}
		}
	}()
	return cancel
}
