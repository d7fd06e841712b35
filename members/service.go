// Package members handles member registration, edits, deletion and payment
// entry. Every payment write recomputes the owner's activity status through
// activity.Engine in the same transaction.
package members

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymdesk/activity"
	"gymdesk/models"
	"gymdesk/tools"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

const (
	PerPage  = 15
	QtyPages = 6
)

var (
	ErrNotFound = errors.New("not found")

	// numeric(8,2)
	maxPaymentAmount = decimal.RequireFromString("999999.99")
)

// ValidationError reports the first invalid field of an input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

type Service struct {
	DB       *gorm.DB
	Engine   *activity.Engine
	Location *time.Location
	Now      func() time.Time
}

func New(db *gorm.DB, engine *activity.Engine) *Service {
	s := &Service{DB: db, Engine: engine, Now: time.Now}
	if engine != nil {
		s.Location = engine.Location
		if engine.Now != nil {
			s.Now = engine.Now
		}
	}
	return s
}

type RegisterInput struct {
	Email       string           `json:"email"`
	FullName    string           `json:"full_name"`
	Phone       string           `json:"phone"`
	PaymentDate time.Time        `json:"payment_date"` // zero means today
	Amount      *decimal.Decimal `json:"amount"`       // nil means models.DefaultPaymentAmount
}

type PaymentInput struct {
	PaymentDate time.Time        `json:"payment_date"`
	Amount      *decimal.Decimal `json:"amount"`
}

type UpdateInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`
}

// Filter narrows List. Empty fields do not filter.
type Filter struct {
	Query       string    // full name contains, case-insensitive
	Status      string    // models.MEMBER_STATUS_ACTIVE / MEMBER_STATUS_INACTIVE
	LastPayment time.Time // exact date of the latest payment
}

// MemberRow is a member with the date of its latest payment.
type MemberRow struct {
	models.Member
	Status      string     `json:"status"` // active | inactive
	LastPayment *time.Time `json:"last_payment"`
}

func newRow(m models.Member) MemberRow {
	return MemberRow{Member: m, Status: m.Status()}
}

type ListResult struct {
	Members    []MemberRow           `json:"members"`
	Page       tools.Page            `json:"page"`
	Pagination tools.PaginationRange `json:"pagination"`
}

func (s *Service) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return models.Today(now(), s.Location)
}

type memberFields struct {
	email, fullName, phone string
}

func (s *Service) checkMember(tx *gorm.DB, email, fullName, phone string, exceptID int64) (memberFields, error) {
	f := memberFields{
		email:    strings.TrimSpace(email),
		fullName: strings.TrimSpace(fullName),
		phone:    tools.CleanPhone(phone),
	}

	if f.fullName == "" {
		return f, invalid("full_name", "O nome completo é obrigatório.")
	}
	if msg := tools.CheckFullName(f.fullName); msg != "" {
		return f, invalid("full_name", msg)
	}
	if !tools.ValidateEmail(f.email) {
		return f, invalid("email", "Informe um endereço de email válido.")
	}
	if !tools.ValidatePhone(f.phone) {
		return f, invalid("phone", "O telefone deve conter apenas números e ter entre 10 e 15 dígitos.")
	}

	var taken int64
	if err := tx.Model(&models.Member{}).
		Where("email = ? AND id <> ?", f.email, exceptID).
		Count(&taken).Error; err != nil {
		return f, fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		if exceptID == 0 {
			return f, invalid("email", "Este e-mail já está cadastrado.")
		}
		return f, invalid("email", "Já existe um aluno com este e-mail.")
	}
	return f, nil
}

func (s *Service) checkPayment(date time.Time, amount *decimal.Decimal) (time.Time, decimal.Decimal, error) {
	today := s.today()
	if date.IsZero() {
		date = today
	}
	date = models.DateOf(date)
	if date.After(today) {
		return date, decimal.Zero, invalid("payment_date", "A data de pagamento não pode ser no futuro.")
	}

	value := models.DefaultPaymentAmount
	if amount != nil {
		value = *amount
	}
	if value.IsNegative() {
		return date, value, invalid("amount", "O valor não pode ser negativo.")
	}
	if value.GreaterThan(maxPaymentAmount) {
		return date, value, invalid("amount", "O valor excede o máximo permitido.")
	}
	return date, value.Round(2), nil
}

func logActivity(tx *gorm.DB, memberID *int64, event, description string) error {
	entry := models.ActivityLog{MemberID: memberID, EventType: event, Description: description}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("activity log: %w", err)
	}
	return nil
}

func paymentDescription(fullName string, amount decimal.Decimal) string {
	return fmt.Sprintf("Aluno %s realizou um pagamento de R$ %s.", fullName, amount.StringFixed(2))
}

func (s *Service) applyStatus(tx *gorm.DB, memberID int64) error {
	if s.Engine == nil {
		return nil
	}
	out, err := s.Engine.UpdateStatusTx(tx, memberID)
	if err != nil {
		return err
	}
	if out.Deactivated {
		s.Engine.Metrics.MemberDeactivated()
	}
	return nil
}

// Register creates a member with its first payment.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.Member, error) {
	if err := ctx.Err(); err != nil {
		return models.Member{}, err
	}

	var member models.Member
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		f, err := s.checkMember(tx, in.Email, in.FullName, in.Phone, 0)
		if err != nil {
			return err
		}
		date, amount, err := s.checkPayment(in.PaymentDate, in.Amount)
		if err != nil {
			return err
		}

		member = models.Member{
			Email:     f.email,
			FullName:  f.fullName,
			Phone:     f.phone,
			StartDate: s.today(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		if err := logActivity(tx, &member.ID, models.ACTIVITY_EVENT_CREATED,
			fmt.Sprintf("Aluno %s foi cadastrado.", member.FullName)); err != nil {
			return err
		}

		payment := models.Payment{MemberID: &member.ID, PaymentDate: date, Amount: amount}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := logActivity(tx, &member.ID, models.ACTIVITY_EVENT_PAYMENT,
			paymentDescription(member.FullName, amount)); err != nil {
			return err
		}

		if err := s.applyStatus(tx, member.ID); err != nil {
			return err
		}
		return tx.First(&member, member.ID).Error
	})
	if err != nil {
		return models.Member{}, err
	}

	slog.Info("members: registered", "member_id", member.ID, "active", member.IsActive)
	return member, nil
}

// AddPayment records a payment for an existing member.
func (s *Service) AddPayment(ctx context.Context, memberID int64, in PaymentInput) (models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return models.Payment{}, err
	}

	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		member, err := findMember(tx, memberID)
		if err != nil {
			return err
		}
		date, amount, err := s.checkPayment(in.PaymentDate, in.Amount)
		if err != nil {
			return err
		}

		payment = models.Payment{MemberID: &member.ID, PaymentDate: date, Amount: amount}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := logActivity(tx, &member.ID, models.ACTIVITY_EVENT_PAYMENT,
			paymentDescription(member.FullName, amount)); err != nil {
			return err
		}
		return s.applyStatus(tx, member.ID)
	})
	if err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

// UpdatePayment edits a payment and recomputes its owner, if it still has one.
func (s *Service) UpdatePayment(ctx context.Context, paymentID int64, in PaymentInput) (models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return models.Payment{}, err
	}

	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return fmt.Errorf("payment %d: %w", paymentID, ErrNotFound)
			}
			return fmt.Errorf("load payment %d: %w", paymentID, err)
		}
		date, amount, err := s.checkPayment(in.PaymentDate, in.Amount)
		if err != nil {
			return err
		}

		payment.PaymentDate = date
		payment.Amount = amount
		if err := tx.Save(&payment).Error; err != nil {
			return fmt.Errorf("save payment %d: %w", paymentID, err)
		}
		if payment.Orphaned() {
			return nil
		}
		return s.applyStatus(tx, *payment.MemberID)
	})
	if err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

// Update is the staff edit form. IsActive is stored as given, without
// running the activity rule.
func (s *Service) Update(ctx context.Context, memberID int64, in UpdateInput) (models.Member, error) {
	if err := ctx.Err(); err != nil {
		return models.Member{}, err
	}

	var member models.Member
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		member, err = findMember(tx, memberID)
		if err != nil {
			return err
		}
		f, err := s.checkMember(tx, in.Email, in.FullName, in.Phone, member.ID)
		if err != nil {
			return err
		}

		member.Email = f.email
		member.FullName = f.fullName
		member.Phone = f.phone
		member.IsActive = in.IsActive
		if err := tx.Save(&member).Error; err != nil {
			return fmt.Errorf("save member %d: %w", memberID, err)
		}
		return logActivity(tx, &member.ID, models.ACTIVITY_EVENT_UPDATED,
			fmt.Sprintf("Aluno %s foi atualizado.", member.FullName))
	})
	if err != nil {
		return models.Member{}, err
	}
	return member, nil
}

// Delete removes a member. Payments and log entries are kept without the
// member reference; billing messages go with it.
func (s *Service) Delete(ctx context.Context, memberID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		member, err := findMember(tx, memberID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Payment{}).
			Where("member_id = ?", memberID).
			UpdateColumn("member_id", gorm.Expr("NULL")).Error; err != nil {
			return fmt.Errorf("orphan payments of member %d: %w", memberID, err)
		}
		if err := tx.Where("member_id = ?", memberID).Delete(&models.BillingMessage{}).Error; err != nil {
			return fmt.Errorf("delete billing messages of member %d: %w", memberID, err)
		}
		if err := tx.Model(&models.ActivityLog{}).
			Where("member_id = ?", memberID).
			UpdateColumn("member_id", gorm.Expr("NULL")).Error; err != nil {
			return fmt.Errorf("detach activity log of member %d: %w", memberID, err)
		}
		if err := tx.Delete(&member).Error; err != nil {
			return fmt.Errorf("delete member %d: %w", memberID, err)
		}
		return logActivity(tx, nil, models.ACTIVITY_EVENT_DELETED,
			fmt.Sprintf("Aluno %s foi excluído.", member.FullName))
	})
	if err != nil {
		return err
	}

	slog.Info("members: deleted", "member_id", memberID)
	return nil
}

func (s *Service) Get(ctx context.Context, memberID int64) (MemberRow, error) {
	if err := ctx.Err(); err != nil {
		return MemberRow{}, err
	}
	member, err := findMember(s.DB, memberID)
	if err != nil {
		return MemberRow{}, err
	}
	rows := []MemberRow{newRow(member)}
	if err := fillLastPayments(s.DB, rows); err != nil {
		return MemberRow{}, err
	}
	return rows[0], nil
}

// List returns one page of members, newest first.
func (s *Service) List(ctx context.Context, filter Filter, page string) (ListResult, error) {
	if err := ctx.Err(); err != nil {
		return ListResult{}, err
	}

	q := s.DB.Model(&models.Member{})
	if name := strings.TrimSpace(filter.Query); name != "" {
		q = q.Where("LOWER(full_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	switch filter.Status {
	case models.MEMBER_STATUS_ACTIVE:
		q = q.Where("is_active = ?", true)
	case models.MEMBER_STATUS_INACTIVE:
		q = q.Where("is_active = ?", false)
	}
	if !filter.LastPayment.IsZero() {
		q = q.Where("(SELECT MAX(payments.payment_date) FROM payments WHERE payments.member_id = members.id) = ?",
			models.DateOf(filter.LastPayment))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListResult{}, fmt.Errorf("count members: %w", err)
	}

	p, window := tools.ComputeWindow(int(total), PerPage, QtyPages, page)

	var list []models.Member
	if err := q.Order("id desc").Offset(p.Offset).Limit(p.PerPage).Find(&list).Error; err != nil {
		return ListResult{}, fmt.Errorf("list members: %w", err)
	}

	rows := make([]MemberRow, len(list))
	for i, m := range list {
		rows[i] = newRow(m)
	}
	if err := fillLastPayments(s.DB, rows); err != nil {
		return ListResult{}, err
	}
	return ListResult{Members: rows, Page: p, Pagination: window}, nil
}

func findMember(tx *gorm.DB, id int64) (models.Member, error) {
	var member models.Member
	if err := tx.First(&member, id).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return member, fmt.Errorf("member %d: %w", id, ErrNotFound)
		}
		return member, fmt.Errorf("load member %d: %w", id, err)
	}
	return member, nil
}

func fillLastPayments(db *gorm.DB, rows []MemberRow) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	var payments []models.Payment
	if err := db.Where("member_id IN (?)", ids).
		Order("payment_date desc").
		Find(&payments).Error; err != nil {
		return fmt.Errorf("last payments: %w", err)
	}

	latest := make(map[int64]time.Time, len(rows))
	for _, p := range payments {
		if _, ok := latest[*p.MemberID]; !ok {
			latest[*p.MemberID] = models.DateOf(p.PaymentDate)
		}
	}
	for i := range rows {
		if d, ok := latest[rows[i].ID]; ok {
			rows[i].LastPayment = &d
		}
	}
	return nil
}
