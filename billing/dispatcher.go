// Package billing delivers the overdue-payment reminders created by the
// activity engine through the WhatsApp gateway.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymdesk/metrics"
	"gymdesk/models"
	"gymdesk/tools"

	"github.com/jinzhu/gorm"
)

const DefaultBatchSize = 100

// Gateway sends a WhatsApp text. tools.UltraMsgClient satisfies it.
type Gateway interface {
	SendMessage(ctx context.Context, to string, message string) (tools.GatewayResponse, error)
}

type Dispatcher struct {
	DB          *gorm.DB
	Gateway     Gateway
	CountryCode string // prepended to the member's phone, e.g. "55"
	Location    *time.Location
	Now         func() time.Time
	Metrics     *metrics.Metrics
}

// Result summarizes one dispatch cycle.
type Result struct {
	Selected int `json:"selected"`
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
	// Unmarked were accepted by the gateway but is_sent could not be saved.
	Unmarked int `json:"unmarked"`
}

// markError means the gateway took the message and only the database update failed.
type markError struct {
	messageID int64
	err       error
}

func (e *markError) Error() string {
	return fmt.Sprintf("mark message %d sent: %v", e.messageID, e.err)
}

func (e *markError) Unwrap() error { return e.err }

// ReminderText is the message body sent to a member with an overdue payment.
func ReminderText(fullName string) string {
	return fmt.Sprintf("Olá, %s! Seu pagamento está atrasado. Por favor, regularize sua situação.", strings.TrimSpace(fullName))
}

func (d *Dispatcher) today() time.Time {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return models.Today(now(), d.Location)
}

// Pending lists unsent messages whose member is still inactive, oldest first.
func (d *Dispatcher) Pending(limit int) ([]models.PendingBillingMessage, error) {
	var rows []models.PendingBillingMessage
	err := d.DB.Table("billing_messages").
		Select("billing_messages.id, billing_messages.member_id, members.full_name, members.phone").
		Joins("JOIN members ON members.id = billing_messages.member_id").
		Where("billing_messages.is_sent = ? AND members.is_active = ?", false, false).
		Order("billing_messages.id asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select pending billing messages: %w", err)
	}
	return rows, nil
}

// DispatchPending sends up to maxBatch pending reminders. A failed send is
// logged and counted and the message stays pending for the next run.
func (d *Dispatcher) DispatchPending(ctx context.Context, maxBatch int) (Result, error) {
	if maxBatch <= 0 {
		maxBatch = DefaultBatchSize
	}

	var res Result
	pending, err := d.Pending(maxBatch)
	if err != nil {
		return res, err
	}
	res.Selected = len(pending)

	for _, msg := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := d.deliver(ctx, msg); err != nil {
			var merr *markError
			if errors.As(err, &merr) {
				res.Unmarked++
				d.Metrics.BillingUnmarked()
				slog.Error("billing: delivered but not marked sent, it will be sent again",
					"message_id", msg.ID, "member_id", msg.MemberID, "err", merr.err)
				continue
			}
			res.Failed++
			d.Metrics.BillingFailed()
			slog.Warn("billing: send failed", "message_id", msg.ID, "member_id", msg.MemberID, "err", err)
			continue
		}
		res.Sent++
		d.Metrics.BillingSent()
	}

	slog.Info("billing: dispatch done", "selected", res.Selected, "sent", res.Sent, "failed", res.Failed, "unmarked", res.Unmarked)
	return res, nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg models.PendingBillingMessage) error {
	to := tools.BillingRecipient(d.CountryCode, msg.Phone)

	resp, err := d.Gateway.SendMessage(ctx, to, ReminderText(msg.FullName))
	if err != nil {
		return err
	}
	if !resp.Accepted() {
		return fmt.Errorf("gateway rejected message: status=%d body=%q", resp.StatusCode, truncate(resp.Body, 200))
	}

	sentAt := d.today()
	err = d.DB.Model(&models.BillingMessage{}).
		Where("id = ? AND is_sent = ?", msg.ID, false).
		Updates(map[string]any{
			"is_sent": true,
			"sent_at": sentAt,
		}).Error
	if err != nil {
		return &markError{messageID: msg.ID, err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
