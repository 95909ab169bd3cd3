package handler

import (
	"time"

	financeapp "github.com/dmitriyabr/duma-erp-sub001/internal/application/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/interfaces/http/dto"
	"github.com/dmitriyabr/duma-erp-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *financeapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the payload for recording a payment.
// Amounts travel as decimal strings so no precision is lost on the wire.
type CreatePaymentRequest struct {
	StudentID     string `json:"student_id" binding:"required,uuid"`
	Amount        string `json:"amount" binding:"required,money"`
	Method        string `json:"method" binding:"required"`
	PaymentDate   string `json:"payment_date" binding:"required"`
	Reference     string `json:"reference"`
	AttachmentURL string `json:"attachment_url"`
}

// UpdatePaymentRequest is the payload for editing a pending payment
type UpdatePaymentRequest struct {
	Amount        string `json:"amount" binding:"required,money"`
	Method        string `json:"method" binding:"required"`
	PaymentDate   string `json:"payment_date" binding:"required"`
	Reference     string `json:"reference"`
	AttachmentURL string `json:"attachment_url"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            string     `json:"id"`
	PaymentNumber string     `json:"payment_number"`
	ReceiptNumber *string    `json:"receipt_number,omitempty"`
	StudentID     string     `json:"student_id"`
	Amount        string     `json:"amount"`
	Method        string     `json:"method"`
	PaymentDate   string     `json:"payment_date"`
	Status        string     `json:"status"`
	Reference     string     `json:"reference,omitempty"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	ReceivedBy    string     `json:"received_by"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		PaymentNumber: p.PaymentNumber,
		ReceiptNumber: p.ReceiptNumber,
		StudentID:     p.StudentID.String(),
		Amount:        p.Amount.StringFixed(2),
		Method:        string(p.Method),
		PaymentDate:   p.PaymentDate.Format("2006-01-02"),
		Status:        string(p.Status),
		Reference:     p.Reference,
		AttachmentURL: p.AttachmentURL,
		ReceivedBy:    p.ReceivedBy.String(),
		CompletedAt:   p.CompletedAt,
		CancelledAt:   p.CancelledAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPaymentResponses(payments []finance.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = toPaymentResponse(&payments[i])
	}
	return out
}

// CreatePayment records a new pending payment
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid or missing user ID")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "amount", Message: "must be a decimal number"}})
		return
	}
	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "payment_date", Message: "must be an ISO date (YYYY-MM-DD)"}})
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), financeapp.CreatePaymentRequest{
		StudentID:     studentID,
		Amount:        amount,
		Method:        finance.PaymentMethod(req.Method),
		PaymentDate:   paymentDate,
		Reference:     req.Reference,
		AttachmentURL: req.AttachmentURL,
		ReceivedBy:    actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toPaymentResponse(payment))
}

// CompletePayment confirms a pending payment, assigning its receipt number
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid or missing user ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.CompletePayment(c.Request.Context(), paymentID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// CancelPayment cancels a pending payment
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid or missing user ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.CancelPayment(c.Request.Context(), paymentID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// UpdatePayment edits a payment that is still pending
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid or missing user ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "amount", Message: "must be a decimal number"}})
		return
	}
	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "payment_date", Message: "must be an ISO date (YYYY-MM-DD)"}})
		return
	}

	payment, err := h.paymentService.UpdatePayment(c.Request.Context(), paymentID, financeapp.UpdatePaymentRequest{
		Amount:        amount,
		Method:        finance.PaymentMethod(req.Method),
		PaymentDate:   paymentDate,
		Reference:     req.Reference,
		AttachmentURL: req.AttachmentURL,
		UpdatedBy:     actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// GetPayment retrieves a payment by ID
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// ListStudentPayments lists a student's payments, newest first
func (h *PaymentHandler) ListStudentPayments(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if list.Page > 0 {
		filter.Page = list.Page
	}
	if list.PageSize > 0 {
		filter.PageSize = list.PageSize
	}
	if list.OrderBy != "" {
		filter.OrderBy = list.OrderBy
	}
	if list.OrderDir != "" {
		filter.OrderDir = list.OrderDir
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), studentID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toPaymentResponses(payments), filter.Page, filter.Limit(), len(payments))
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.POST("/:id/complete", h.CompletePayment)
		payments.POST("/:id/cancel", h.CancelPayment)
	}

	rg.GET("/students/:id/payments", h.ListStudentPayments)
}
