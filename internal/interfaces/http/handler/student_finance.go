package handler

import (
	"time"

	financeapp "github.com/dmitriyabr/duma-erp-sub001/internal/application/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StudentFinanceHandler handles the read side of student finances:
// balances, statements and outstanding totals
type StudentFinanceHandler struct {
	BaseHandler
	balanceService   *financeapp.BalanceService
	statementService *financeapp.StatementService
}

// NewStudentFinanceHandler creates a new StudentFinanceHandler
func NewStudentFinanceHandler(
	balanceService *financeapp.BalanceService,
	statementService *financeapp.StatementService,
) *StudentFinanceHandler {
	return &StudentFinanceHandler{
		balanceService:   balanceService,
		statementService: statementService,
	}
}

// BalanceResponse represents a student's credit balance
type BalanceResponse struct {
	StudentID        string `json:"student_id"`
	TotalPayments    string `json:"total_payments"`
	TotalAllocated   string `json:"total_allocated"`
	AvailableBalance string `json:"available_balance"`
}

// OutstandingRequest is the payload for a batched outstanding-debt query
type OutstandingRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,dive,uuid"`
}

// StatementEntryResponse is one statement line with its running balance
type StatementEntryResponse struct {
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	Amount         string    `json:"amount"`
	RunningBalance string    `json:"running_balance"`
	PaymentID      *string   `json:"payment_id,omitempty"`
	PaymentNumber  string    `json:"payment_number,omitempty"`
	AllocationID   *string   `json:"allocation_id,omitempty"`
	InvoiceID      *string   `json:"invoice_id,omitempty"`
	Description    string    `json:"description,omitempty"`
}

// StatementResponse represents a student's statement over a period
type StatementResponse struct {
	StudentID      string                   `json:"student_id"`
	DateFrom       string                   `json:"date_from"`
	DateTo         string                   `json:"date_to"`
	OpeningBalance string                   `json:"opening_balance"`
	TotalCredits   string                   `json:"total_credits"`
	TotalDebits    string                   `json:"total_debits"`
	ClosingBalance string                   `json:"closing_balance"`
	Entries        []StatementEntryResponse `json:"entries"`
}

func toStatementResponse(st *finance.Statement) StatementResponse {
	entries := make([]StatementEntryResponse, len(st.Entries))
	for i, e := range st.Entries {
		entry := StatementEntryResponse{
			Type:           string(e.Type),
			OccurredAt:     e.OccurredAt,
			Amount:         e.Amount.StringFixed(2),
			RunningBalance: e.RunningBalance.StringFixed(2),
			PaymentNumber:  e.PaymentNumber,
			Description:    e.Description,
		}
		if e.PaymentID != nil {
			id := e.PaymentID.String()
			entry.PaymentID = &id
		}
		if e.AllocationID != nil {
			id := e.AllocationID.String()
			entry.AllocationID = &id
		}
		if e.InvoiceID != nil {
			id := e.InvoiceID.String()
			entry.InvoiceID = &id
		}
		entries[i] = entry
	}
	return StatementResponse{
		StudentID:      st.StudentID.String(),
		DateFrom:       st.DateFrom.Format("2006-01-02"),
		DateTo:         st.DateTo.Format("2006-01-02"),
		OpeningBalance: st.OpeningBalance.StringFixed(2),
		TotalCredits:   st.TotalCredits.StringFixed(2),
		TotalDebits:    st.TotalDebits.StringFixed(2),
		ClosingBalance: st.ClosingBalance.StringFixed(2),
		Entries:        entries,
	}
}

// GetBalance returns a student's derived credit balance
func (h *StudentFinanceHandler) GetBalance(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	balance, err := h.balanceService.GetStudentBalance(c.Request.Context(), studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, BalanceResponse{
		StudentID:        studentID.String(),
		TotalPayments:    balance.TotalPayments.StringFixed(2),
		TotalAllocated:   balance.TotalAllocated.StringFixed(2),
		AvailableBalance: balance.Available.StringFixed(2),
	})
}

// GetStatement returns a student's statement for a date range
func (h *StudentFinanceHandler) GetStatement(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	dateFrom, err := time.Parse("2006-01-02", c.Query("date_from"))
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "date_from", Message: "must be an ISO date (YYYY-MM-DD)"}})
		return
	}
	dateTo, err := time.Parse("2006-01-02", c.Query("date_to"))
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "date_to", Message: "must be an ISO date (YYYY-MM-DD)"}})
		return
	}
	if dateTo.Before(dateFrom) {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "date_to", Message: "must not be before date_from"}})
		return
	}

	statement, err := h.statementService.GetStatement(c.Request.Context(), studentID, dateFrom, dateTo)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStatementResponse(statement))
}

// GetOutstandingTotals returns per-student outstanding debt for a batch of
// students
func (h *StudentFinanceHandler) GetOutstandingTotals(c *gin.Context) {
	var req OutstandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	studentIDs := make([]uuid.UUID, len(req.StudentIDs))
	for i, raw := range req.StudentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid student ID: "+raw)
			return
		}
		studentIDs[i] = id
	}

	totals, err := h.balanceService.GetOutstandingTotals(c.Request.Context(), studentIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make(map[string]string, len(totals))
	for id, total := range totals {
		out[id.String()] = total.StringFixed(2)
	}

	h.Success(c, out)
}

// RegisterRoutes registers student finance routes
func (h *StudentFinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	students := rg.Group("/students")
	{
		students.GET("/:id/balance", h.GetBalance)
		students.GET("/:id/statement", h.GetStatement)
	}

	// Static segments cannot share a level with the :id wildcard above, so
	// the batch query lives under /balances.
	rg.POST("/balances/outstanding", h.GetOutstandingTotals)
}
