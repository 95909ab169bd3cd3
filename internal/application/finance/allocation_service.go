package finance

import (
	"context"
	"fmt"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/billing"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllocationService applies student credit to invoices: manual allocation,
// allocation reversal and the auto-allocation run. Every mutation executes
// as one transaction covering the allocation row, the invoice recompute,
// the reservation sync and the audit entry; a failure anywhere rolls the
// whole unit back.
type AllocationService struct {
	scope   TransactionScope
	planner *finance.AllocationPlanner
	syncer  ReservationSyncer
	cache   BalanceCache
	logger  *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	scope TransactionScope,
	planner *finance.AllocationPlanner,
	syncer ReservationSyncer,
	cache BalanceCache,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		scope:   scope,
		planner: planner,
		syncer:  syncer,
		cache:   cache,
		logger:  logger,
	}
}

// ManualAllocationRequest represents a request to allocate credit to one
// invoice, optionally scoped to one of its lines
type ManualAllocationRequest struct {
	StudentID     uuid.UUID
	InvoiceID     uuid.UUID
	InvoiceLineID *uuid.UUID
	Amount        decimal.Decimal
	AllocatedBy   uuid.UUID
}

// AutoAllocationResult is the outcome of one auto-allocation run
type AutoAllocationResult struct {
	TotalAllocated        decimal.Decimal            `json:"total_allocated"`
	InvoicesFullyPaid     int                        `json:"invoices_fully_paid"`
	InvoicesPartiallyPaid int                        `json:"invoices_partially_paid"`
	RemainingBalance      decimal.Decimal            `json:"remaining_balance"`
	Allocations           []finance.CreditAllocation `json:"allocations"`
}

// AllocateManual allocates credit to a specific invoice. Validation runs in
// a fixed order and the first failure wins with no partial effects: student
// exists, invoice exists and belongs to the student, invoice not terminal,
// invoice still owes money, amount within the student's available balance,
// amount within the invoice's amount due (and exactly the amount due on a
// requires-full invoice), and, when a line is specified,
// the line belongs to the invoice and the amount is within the line's
// remaining amount. Amounts are never clamped: an over-allocation request
// is rejected outright.
func (s *AllocationService) AllocateManual(ctx context.Context, req ManualAllocationRequest) (*finance.CreditAllocation, error) {
	amount := valueobject.NewMoney(req.Amount).Round()
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}

	var allocation *finance.CreditAllocation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.StudentRepo().FindByID(ctx, req.StudentID); err != nil {
			return fmt.Errorf("failed to load student: %w", err)
		}

		invoice, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}
		if invoice.StudentID != req.StudentID {
			return shared.NewDomainError("INVOICE_MISMATCH", "Invoice does not belong to the student")
		}
		if invoice.Status.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot allocate to invoice in %s status", invoice.Status))
		}
		if invoice.AmountDue.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVOICE_SETTLED", "Invoice has no amount due")
		}

		balance, err := deriveBalance(ctx, repos, req.StudentID)
		if err != nil {
			return err
		}
		if amount.Amount().GreaterThan(balance.Available) {
			return shared.NewInsufficientBalanceError(amount.Amount(), balance.Available)
		}
		if amount.Amount().GreaterThan(invoice.AmountDue) {
			return shared.NewValidationError("amount_due", amount.Amount(), invoice.AmountDue)
		}
		if invoice.RequiresFullPayment && !amount.Amount().Equal(invoice.AmountDue) {
			// Such invoices are settled 0% or 100%, never in between.
			return shared.NewValidationError("requires_full_payment", amount.Amount(), invoice.AmountDue)
		}
		if req.InvoiceLineID != nil {
			line := invoice.LineByID(*req.InvoiceLineID)
			if line == nil {
				return shared.NewDomainError("LINE_MISMATCH", "Invoice line does not belong to the invoice")
			}
			if amount.Amount().GreaterThan(line.Remaining) {
				return shared.NewValidationError("line_remaining", amount.Amount(), line.Remaining)
			}
		}

		allocation, err = finance.NewCreditAllocation(req.StudentID, req.InvoiceID, req.InvoiceLineID, amount, req.AllocatedBy)
		if err != nil {
			return err
		}
		if err := repos.AllocationRepo().Create(ctx, allocation); err != nil {
			return fmt.Errorf("failed to create allocation: %w", err)
		}

		if err := s.recomputeInvoice(ctx, repos, invoice); err != nil {
			return err
		}
		if err := s.syncer.SyncForInvoice(ctx, repos, invoice, req.AllocatedBy); err != nil {
			return fmt.Errorf("reservation sync failed: %w", err)
		}
		if err := s.refreshCachedBalance(ctx, repos, req.StudentID); err != nil {
			return err
		}

		entry := shared.NewAuditEntry("ALLOCATION_CREATED", "credit_allocation", allocation.ID, req.AllocatedBy).
			WithNewValues(map[string]any{
				"invoice_id": allocation.InvoiceID,
				"amount":     allocation.Amount,
			})
		return repos.AuditRepo().Log(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("credit allocated",
		zap.String("student_id", req.StudentID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", allocation.Amount.StringFixed(2)))
	return allocation, nil
}

// DeleteAllocation fully reverses an allocation. The invoice's paid amounts
// and status are recomputed without the deleted row and the credit returns
// to the student's available balance, since the balance is always derived.
func (s *AllocationService) DeleteAllocation(ctx context.Context, allocationID, actor uuid.UUID, reason string) error {
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		allocation, err := repos.AllocationRepo().FindByID(ctx, allocationID)
		if err != nil {
			return fmt.Errorf("failed to load allocation: %w", err)
		}

		invoice, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, allocation.InvoiceID)
		if err != nil {
			return fmt.Errorf("failed to load invoice: %w", err)
		}

		old := map[string]any{
			"student_id":      allocation.StudentID,
			"invoice_id":      allocation.InvoiceID,
			"invoice_line_id": allocation.InvoiceLineID,
			"amount":          allocation.Amount,
		}

		if err := repos.AllocationRepo().Delete(ctx, allocationID); err != nil {
			return fmt.Errorf("failed to delete allocation: %w", err)
		}

		if err := s.recomputeInvoice(ctx, repos, invoice); err != nil {
			return err
		}
		if err := s.syncer.SyncForInvoice(ctx, repos, invoice, actor); err != nil {
			return fmt.Errorf("reservation sync failed: %w", err)
		}
		if err := s.refreshCachedBalance(ctx, repos, allocation.StudentID); err != nil {
			return err
		}

		entry := shared.NewAuditEntry("ALLOCATION_DELETED", "credit_allocation", allocationID, actor).
			WithOldValues(old).
			WithComment(reason)
		return repos.AuditRepo().Log(ctx, entry)
	})
	if err != nil {
		return err
	}

	s.logger.Info("allocation reversed",
		zap.String("allocation_id", allocationID.String()),
		zap.String("reason", reason))
	return nil
}

// AllocateAuto spreads the student's available credit across their open
// invoices. The planner decides the split; each planned allocation is then
// created, recomputed and synced in order, so later invoices in the run see
// a consistent world. The whole run is one transaction with one aggregate
// audit entry, and it never fails on insufficient funds: it places what
// policy allows and reports the remainder.
func (s *AllocationService) AllocateAuto(ctx context.Context, studentID uuid.UUID, maxAmount *decimal.Decimal, actor uuid.UUID) (*AutoAllocationResult, error) {
	var result *AutoAllocationResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.StudentRepo().FindByID(ctx, studentID); err != nil {
			return fmt.Errorf("failed to load student: %w", err)
		}

		balance, err := deriveBalance(ctx, repos, studentID)
		if err != nil {
			return err
		}
		budget := balance.Available
		if maxAmount != nil && maxAmount.LessThan(budget) {
			budget = valueobject.RoundMoney(*maxAmount)
		}
		if budget.LessThanOrEqual(decimal.Zero) {
			result = &AutoAllocationResult{
				TotalAllocated:   decimal.Zero,
				RemainingBalance: balance.Available,
				Allocations:      []finance.CreditAllocation{},
			}
			return nil
		}

		invoices, err := repos.InvoiceRepo().FindOpenByStudent(ctx, studentID)
		if err != nil {
			return fmt.Errorf("failed to load open invoices: %w", err)
		}

		byID := make(map[uuid.UUID]*billing.Invoice, len(invoices))
		targets := make([]finance.AllocationTarget, 0, len(invoices))
		for i := range invoices {
			inv := &invoices[i]
			byID[inv.ID] = inv
			targets = append(targets, finance.AllocationTarget{
				InvoiceID:           inv.ID,
				InvoiceNumber:       inv.InvoiceNumber,
				AmountDue:           inv.AmountDue,
				RequiresFullPayment: inv.RequiresFullPayment,
				CreatedAt:           inv.CreatedAt,
			})
		}

		plan, err := s.planner.Plan(valueobject.NewMoney(budget), targets)
		if err != nil {
			return err
		}

		created := make([]finance.CreditAllocation, 0, len(plan.Allocations))
		for _, planned := range plan.Allocations {
			allocation, err := finance.NewCreditAllocation(studentID, planned.InvoiceID, nil, valueobject.NewMoney(planned.Amount), actor)
			if err != nil {
				return err
			}
			if err := repos.AllocationRepo().Create(ctx, allocation); err != nil {
				return fmt.Errorf("failed to create allocation: %w", err)
			}

			invoice := byID[planned.InvoiceID]
			if err := s.recomputeInvoice(ctx, repos, invoice); err != nil {
				return err
			}
			if err := s.syncer.SyncForInvoice(ctx, repos, invoice, actor); err != nil {
				return fmt.Errorf("reservation sync failed: %w", err)
			}
			created = append(created, *allocation)
		}

		if err := s.refreshCachedBalance(ctx, repos, studentID); err != nil {
			return err
		}

		result = &AutoAllocationResult{
			TotalAllocated:        plan.TotalAllocated,
			InvoicesFullyPaid:     plan.FullyPaidCount,
			InvoicesPartiallyPaid: plan.PartiallyPaid,
			RemainingBalance:      valueobject.RoundMoney(balance.Available.Sub(plan.TotalAllocated)),
			Allocations:           created,
		}

		entry := shared.NewAuditEntry("AUTO_ALLOCATION_RUN", "student", studentID, actor).
			WithNewValues(map[string]any{
				"total_allocated":         result.TotalAllocated,
				"invoices_fully_paid":     result.InvoicesFullyPaid,
				"invoices_partially_paid": result.InvoicesPartiallyPaid,
				"remaining_balance":       result.RemainingBalance,
			})
		return repos.AuditRepo().Log(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("auto-allocation run",
		zap.String("student_id", studentID.String()),
		zap.String("total_allocated", result.TotalAllocated.StringFixed(2)),
		zap.Int("fully_paid", result.InvoicesFullyPaid),
		zap.Int("partially_paid", result.InvoicesPartiallyPaid))
	return result, nil
}

// recomputeInvoice reloads the full allocation set for the invoice, reruns
// the aggregate's recomputation and persists the result
func (s *AllocationService) recomputeInvoice(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice) error {
	rows, err := repos.AllocationRepo().FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to load invoice allocations: %w", err)
	}
	amounts := make([]billing.AllocationAmount, 0, len(rows))
	for i := range rows {
		amounts = append(amounts, billing.AllocationAmount{
			LineID: rows[i].InvoiceLineID,
			Amount: rows[i].Amount,
		})
	}
	invoice.RecalculatePayments(amounts)
	if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

func (s *AllocationService) refreshCachedBalance(ctx context.Context, repos TransactionalRepositories, studentID uuid.UUID) error {
	balance, err := deriveBalance(ctx, repos, studentID)
	if err != nil {
		return err
	}
	if err := repos.StudentRepo().UpdateCachedBalance(ctx, studentID, balance.Available); err != nil {
		return fmt.Errorf("failed to update cached balance: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, studentID, balance.Available); err != nil {
			s.logger.Warn("balance cache refresh failed",
				zap.String("student_id", studentID.String()), zap.Error(err))
		}
	}
	return nil
}
