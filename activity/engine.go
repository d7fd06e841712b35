// Package activity keeps Member.IsActive in line with the member's payments.
//
// A member stays active for models.DAYS_UNTIL_PENDING days after the last
// payment. Past that the member goes pending and gets one unsent billing
// message, which the billing dispatcher delivers later.
package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymdesk/metrics"
	"gymdesk/models"

	"github.com/jinzhu/gorm"
)

var ErrMemberNotFound = errors.New("member not found")

type Engine struct {
	DB       *gorm.DB
	Location *time.Location // business time zone, defaults to UTC
	Now      func() time.Time
	Metrics  *metrics.Metrics
}

// Outcome describes what one status evaluation did.
type Outcome struct {
	MemberID       int64
	Active         bool
	Deactivated    bool // was active before this run
	MessageCreated bool
	LastPayment    *time.Time
}

// SweepResult is returned by UpdateAllActive.
type SweepResult struct {
	Checked     int `json:"checked"`
	Deactivated int `json:"deactivated"`
	Failed      int `json:"failed"`
}

func New(db *gorm.DB, loc *time.Location) *Engine {
	return &Engine{DB: db, Location: loc, Now: time.Now}
}

func (e *Engine) today() time.Time {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return models.Today(now(), e.Location)
}

// Cutoff is the oldest payment date that still keeps a member active today.
func (e *Engine) Cutoff() time.Time {
	return e.today().AddDate(0, 0, -models.DAYS_UNTIL_PENDING)
}

// UpdateStatus recomputes the activity status of one member in its own
// transaction.
func (e *Engine) UpdateStatus(ctx context.Context, memberID int64) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err := e.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = e.UpdateStatusTx(tx, memberID)
		return err
	})
	if err != nil {
		return Outcome{}, err
	}

	if out.Deactivated {
		e.Metrics.MemberDeactivated()
		slog.Info("activity: member pending", "member_id", memberID, "last_payment", out.LastPayment)
	}
	return out, nil
}

// UpdateStatusTx applies the activity rule using tx. Callers that already hold
// a transaction (payment entry) use it so the status lands in the same commit.
func (e *Engine) UpdateStatusTx(tx *gorm.DB, memberID int64) (Outcome, error) {
	out := Outcome{MemberID: memberID}

	var member models.Member
	if err := lockRow(tx).First(&member, memberID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return out, fmt.Errorf("member %d: %w", memberID, ErrMemberNotFound)
		}
		return out, fmt.Errorf("load member %d: %w", memberID, err)
	}
	wasActive := member.IsActive

	var payments []models.Payment
	if err := tx.
		Where("member_id = ?", memberID).
		Order("payment_date desc, id desc").
		Limit(1).
		Find(&payments).Error; err != nil {
		return out, fmt.Errorf("last payment of member %d: %w", memberID, err)
	}

	// No payment on record keeps the member active.
	active := true
	if len(payments) > 0 {
		last := models.DateOf(payments[0].PaymentDate)
		out.LastPayment = &last
		active = !last.Before(e.Cutoff())
	}

	if !active {
		created, err := ensurePendingMessage(tx, memberID, e.today())
		if err != nil {
			return out, err
		}
		out.MessageCreated = created
	}

	member.IsActive = active
	if err := tx.Save(&member).Error; err != nil {
		return out, fmt.Errorf("save member %d: %w", memberID, err)
	}

	if wasActive && !active {
		entry := models.ActivityLog{
			MemberID:    &member.ID,
			EventType:   models.ACTIVITY_EVENT_PENDING,
			Description: fmt.Sprintf("%s está com o pagamento pendente.", member.FullName),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return out, fmt.Errorf("activity log for member %d: %w", memberID, err)
		}
		out.Deactivated = true
	}

	out.Active = active
	return out, nil
}

// lockRow serializes concurrent evaluations of the same member on postgres.
// sqlite runs on a single connection and has no FOR UPDATE.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialect().GetName() == "postgres" {
		return tx.Set("gorm:query_option", "FOR UPDATE")
	}
	return tx
}

// ensurePendingMessage is a get-or-create on (member, is_sent=false).
func ensurePendingMessage(tx *gorm.DB, memberID int64, today time.Time) (bool, error) {
	var existing []models.BillingMessage
	if err := tx.
		Where("member_id = ? AND is_sent = ?", memberID, false).
		Limit(1).
		Find(&existing).Error; err != nil {
		return false, fmt.Errorf("pending billing message of member %d: %w", memberID, err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	msg := models.BillingMessage{MemberID: memberID, CreatedOn: today}
	if err := tx.Create(&msg).Error; err != nil {
		return false, fmt.Errorf("create billing message for member %d: %w", memberID, err)
	}
	return true, nil
}

// UpdateAllActive re-evaluates every member currently flagged active.
// A failure on one member is logged and counted; the sweep goes on.
func (e *Engine) UpdateAllActive(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	var ids []int64
	if err := e.DB.Model(&models.Member{}).
		Where("is_active = ?", true).
		Order("id asc").
		Pluck("id", &ids).Error; err != nil {
		return res, fmt.Errorf("list active members: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		out, err := e.UpdateStatus(ctx, id)
		if err != nil {
			res.Failed++
			slog.Error("activity: update status failed", "member_id", id, "err", err)
			continue
		}
		if out.Deactivated {
			res.Deactivated++
		}
	}

	slog.Info("activity: sweep done",
		"checked", res.Checked,
		"deactivated", res.Deactivated,
		"failed", res.Failed,
	)
	return res, nil
}
