package controllers

import (
	"net/http"

	"gymdesk/members"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MemberRequest struct {
	Email       string           `json:"email"`
	FullName    string           `json:"full_name"`
	Phone       string           `json:"phone"`
	IsActive    bool             `json:"is_active"`
	PaymentDate string           `json:"payment_date"` // AAAA-MM-DD, só no cadastro
	Amount      *decimal.Decimal `json:"amount"`
}

type PaymentRequest struct {
	PaymentDate string           `json:"payment_date"`
	Amount      *decimal.Decimal `json:"amount"`
}

func memberService(c *gin.Context) (*members.Service, bool) {
	s := ServicesInstance(c)
	if s == nil || s.Members == nil {
		RespondError(c, "serviço de alunos não configurado", http.StatusInternalServerError)
		return nil, false
	}
	return s.Members, true
}

func (req PaymentRequest) input(c *gin.Context) (members.PaymentInput, bool) {
	date, err := ParseDate(req.PaymentDate)
	if err != nil {
		RespondError(c, "payment_date inválido (use AAAA-MM-DD)", http.StatusBadRequest)
		return members.PaymentInput{}, false
	}
	return members.PaymentInput{PaymentDate: date, Amount: req.Amount}, true
}

// GET /api/members?q=&status=&last_payment=&page=
func GetMembers(c *gin.Context) {
	svc, ok := memberService(c)
	if !ok {
		return
	}
	lastPayment, err := ParseDate(c.Query("last_payment"))
	if err != nil {
		RespondError(c, "last_payment inválido (use AAAA-MM-DD)", http.StatusBadRequest)
		return
	}

	res, err := svc.List(c.Request.Context(), members.Filter{
		Query:       c.Query("q"),
		Status:      c.Query("status"),
		LastPayment: lastPayment,
	}, c.Query("page"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, res)
}

// GET /api/members/:id
func GetMemberByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	svc, ok := memberService(c)
	if !ok {
		return
	}
	member, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"member": member})
}

// POST /api/members
func CreateMember(c *gin.Context) {
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	payment, ok := PaymentRequest{PaymentDate: req.PaymentDate, Amount: req.Amount}.input(c)
	if !ok {
		return
	}
	svc, ok := memberService(c)
	if !ok {
		return
	}

	member, err := svc.Register(c.Request.Context(), members.RegisterInput{
		Email:       req.Email,
		FullName:    req.FullName,
		Phone:       req.Phone,
		PaymentDate: payment.PaymentDate,
		Amount:      payment.Amount,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// PUT /api/members/:id
func UpdateMember(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	svc, ok := memberService(c)
	if !ok {
		return
	}

	member, err := svc.Update(c.Request.Context(), id, members.UpdateInput{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"member": member})
}

// DELETE /api/members/:id
func DeleteMember(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	svc, ok := memberService(c)
	if !ok {
		return
	}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}

// POST /api/members/:id/payments
func AddPayment(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	svc, ok := memberService(c)
	if !ok {
		return
	}

	payment, err := svc.AddPayment(c.Request.Context(), id, in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// PUT /api/payments/:id
func UpdatePayment(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	svc, ok := memberService(c)
	if !ok {
		return
	}

	payment, err := svc.UpdatePayment(c.Request.Context(), id, in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"payment": payment})
}
