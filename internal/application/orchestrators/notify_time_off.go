package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"itgportal/internal/adapters/email"
	"itgportal/internal/domain/coach"
)

// NotifyTimeOffInput describes a time-off range that was just recorded.
type NotifyTimeOffInput struct {
	Coach     coach.Coach
	StartDate string
	EndDate   string
	Status    string
	Reason    string
	Days      int
}

// NotifyTimeOffDeps holds dependencies for NotifyTimeOff.
// Outbox is optional; when set, a failed send is queued for retry.
type NotifyTimeOffDeps struct {
	Sender     email.Sender
	Recipients []string
	From       string
	Outbox     NoticeOutbox
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteNotifyTimeOff emails program staff about a coach's time off.
// PRE: input.Coach is populated; Days >= 1
// POST: One message sent to Recipients, or queued with ErrNoticeQueued; no-op when Recipients is empty
func ExecuteNotifyTimeOff(ctx context.Context, input NotifyTimeOffInput, deps NotifyTimeOffDeps) (email.SendResult, error) {
	if len(deps.Recipients) == 0 {
		slog.Debug("notify_event", "event", "time_off_notify_skipped", "coach_id", input.Coach.ID)
		return email.SendResult{}, nil
	}

	msg := email.Message{
		To:      deps.Recipients,
		From:    deps.From,
		Subject: timeOffSubject(input),
		Body:    timeOffBody(input),
		ReplyTo: input.Coach.Email,
	}
	res, err := deps.Sender.Send(ctx, msg)
	if err != nil {
		if deps.Outbox == nil {
			return email.SendResult{}, fmt.Errorf("send time-off notice: %w", err)
		}
		id := deps.GenerateID()
		if qerr := queueNotice(ctx, deps.Outbox, id, deps.Now(), msg, err); qerr != nil {
			return email.SendResult{}, fmt.Errorf("send time-off notice: %w (queue: %v)", err, qerr)
		}
		slog.Warn("notify_event", "event", "time_off_notice_queued", "coach_id", input.Coach.ID, "entry_id", id, "error", err)
		return email.SendResult{}, fmt.Errorf("%w: %w", ErrNoticeQueued, err)
	}

	slog.Info("notify_event", "event", "time_off_notified", "coach_id", input.Coach.ID, "message_id", res.MessageID, "recipients", len(deps.Recipients))
	return res, nil
}

func timeOffSubject(in NotifyTimeOffInput) string {
	if in.StartDate == in.EndDate {
		return fmt.Sprintf("%s: %s on %s", in.Coach.Name, in.Status, in.StartDate)
	}
	return fmt.Sprintf("%s: %s %s to %s", in.Coach.Name, in.Status, in.StartDate, in.EndDate)
}

func timeOffBody(in NotifyTimeOffInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** will be unavailable.\n\n", in.Coach.Name)
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Status | %s |\n", in.Status)
	fmt.Fprintf(&b, "| From | %s |\n", in.StartDate)
	fmt.Fprintf(&b, "| To | %s |\n", in.EndDate)
	fmt.Fprintf(&b, "| Days | %d |\n", in.Days)
	if in.Reason != "" {
		fmt.Fprintf(&b, "\nReason: %s\n", in.Reason)
	}
	return b.String()
}
