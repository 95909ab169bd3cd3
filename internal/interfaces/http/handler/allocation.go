package handler

import (
	"time"

	financeapp "github.com/dmitriyabr/duma-erp-sub001/internal/application/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/interfaces/http/dto"
	"github.com/dmitriyabr/duma-erp-sub001/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationHandler handles credit allocation API endpoints
type AllocationHandler struct {
	BaseHandler
	allocationService *financeapp.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(allocationService *financeapp.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// ManualAllocationRequest is the payload for allocating credit to an
// invoice or one of its lines
type ManualAllocationRequest struct {
	StudentID     string  `json:"student_id" binding:"required,uuid"`
	InvoiceID     string  `json:"invoice_id" binding:"required,uuid"`
	InvoiceLineID *string `json:"invoice_line_id" binding:"omitempty,uuid"`
	Amount        string  `json:"amount" binding:"required,money"`
}

// AutoAllocationRequest is the payload for running automatic allocation
type AutoAllocationRequest struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	MaxAmount *string `json:"max_amount" binding:"omitempty,money"`
}

// DeleteAllocationRequest carries the mandatory reason for reversing an
// allocation
type DeleteAllocationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AllocationResponse represents a credit allocation in API responses
type AllocationResponse struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	InvoiceID     string    `json:"invoice_id"`
	InvoiceLineID *string   `json:"invoice_line_id,omitempty"`
	Amount        string    `json:"amount"`
	AllocatedBy   string    `json:"allocated_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// AutoAllocationResponse summarizes an automatic allocation run
type AutoAllocationResponse struct {
	TotalAllocated        string               `json:"total_allocated"`
	InvoicesFullyPaid     int                  `json:"invoices_fully_paid"`
	InvoicesPartiallyPaid int                  `json:"invoices_partially_paid"`
	RemainingBalance      string               `json:"remaining_balance"`
	Allocations           []AllocationResponse `json:"allocations"`
}

func toAllocationResponse(a *finance.CreditAllocation) AllocationResponse {
	resp := AllocationResponse{
		ID:          a.ID.String(),
		StudentID:   a.StudentID.String(),
		InvoiceID:   a.InvoiceID.String(),
		Amount:      a.Amount.StringFixed(2),
		AllocatedBy: a.AllocatedBy.String(),
		CreatedAt:   a.CreatedAt,
	}
	if a.InvoiceLineID != nil {
		lineID := a.InvoiceLineID.String()
		resp.InvoiceLineID = &lineID
	}
	return resp
}

func toAutoAllocationResponse(result *financeapp.AutoAllocationResult) AutoAllocationResponse {
	allocations := make([]AllocationResponse, len(result.Allocations))
	for i := range result.Allocations {
		allocations[i] = toAllocationResponse(&result.Allocations[i])
	}
	return AutoAllocationResponse{
		TotalAllocated:        result.TotalAllocated.StringFixed(2),
		InvoicesFullyPaid:     result.InvoicesFullyPaid,
		InvoicesPartiallyPaid: result.InvoicesPartiallyPaid,
		RemainingBalance:      result.RemainingBalance.StringFixed(2),
		Allocations:           allocations,
	}
}

// AllocateManual allocates a chosen amount of credit against an invoice
func (h *AllocationHandler) AllocateManual(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid or missing user ID")
		return
	}

	var req ManualAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}
	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	var lineID *uuid.UUID
	if req.InvoiceLineID != nil {
		parsed, err := uuid.Parse(*req.InvoiceLineID)
		if err != nil {
			h.BadRequest(c, "Invalid invoice line ID")
			return
		}
		lineID = &parsed
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: "amount", Message: "must be a decimal number"}})
		return
	}

	allocation, err := h.allocationService.AllocateManual(c.Request.Context(), financeapp.ManualAllocationRequest{
		StudentID:     studentID,
		InvoiceID:     invoiceID,
		InvoiceLineID: lineID,
		Amount:        amount,
		AllocatedBy:   actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAllocationResponse(allocation))
}

// AllocateAuto distributes a student's available credit across their open
// invoices
func (h *AllocationHandler) AllocateAuto(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid or missing user ID")
		return
	}

	var req AutoAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}
	var maxAmount *decimal.Decimal
	if req.MaxAmount != nil {
		parsed, err := decimal.NewFromString(*req.MaxAmount)
		if err != nil {
			h.ValidationError(c, []dto.ValidationDetail{{Field: "max_amount", Message: "must be a decimal number"}})
			return
		}
		maxAmount = &parsed
	}

	result, err := h.allocationService.AllocateAuto(c.Request.Context(), studentID, maxAmount, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAutoAllocationResponse(result))
}

// DeleteAllocation reverses an allocation, returning the credit to the
// student's balance
func (h *AllocationHandler) DeleteAllocation(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid or missing user ID")
		return
	}

	allocationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID")
		return
	}

	var req DeleteAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "A reason for the reversal is required")
		return
	}

	if err := h.allocationService.DeleteAllocation(c.Request.Context(), allocationID, actor, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers allocation routes
func (h *AllocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	allocations := rg.Group("/allocations")
	{
		allocations.POST("", h.AllocateManual)
		allocations.POST("/auto", h.AllocateAuto)
		allocations.DELETE("/:id", h.DeleteAllocation)
	}
}
