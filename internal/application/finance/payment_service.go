package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	paymentNumberPrefix = "PAY"
	receiptNumberPrefix = "RCT"
)

// PaymentService handles the payment lifecycle: a payment is recorded as
// pending, then completed (receipt assigned, starts counting toward the
// student's credit) or cancelled. Completed and cancelled payments are
// immutable.
type PaymentService struct {
	scope     TransactionScope
	numberGen shared.NumberGenerator
	cache     BalanceCache
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	numberGen shared.NumberGenerator,
	cache BalanceCache,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		scope:     scope,
		numberGen: numberGen,
		cache:     cache,
		logger:    logger,
	}
}

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	StudentID     uuid.UUID
	Amount        decimal.Decimal
	Method        finance.PaymentMethod
	PaymentDate   time.Time
	Reference     string
	AttachmentURL string
	ReceivedBy    uuid.UUID
}

// UpdatePaymentRequest mutates a still-pending payment
type UpdatePaymentRequest struct {
	Amount        decimal.Decimal
	Method        finance.PaymentMethod
	PaymentDate   time.Time
	Reference     string
	AttachmentURL string
	UpdatedBy     uuid.UUID
}

// CreatePayment records a new pending payment for a student
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*finance.Payment, error) {
	var payment *finance.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		stu, err := repos.StudentRepo().FindByID(ctx, req.StudentID)
		if err != nil {
			return fmt.Errorf("failed to load student: %w", err)
		}
		if !stu.IsActive() {
			return shared.NewDomainError("STUDENT_INACTIVE", "Cannot record a payment for an inactive student")
		}

		year := req.PaymentDate.Year()
		if req.PaymentDate.IsZero() {
			year = time.Now().Year()
		}
		number, err := s.numberGen.Generate(ctx, paymentNumberPrefix, year)
		if err != nil {
			return fmt.Errorf("failed to generate payment number: %w", err)
		}

		payment, err = finance.NewPayment(number, req.StudentID, valueobject.NewMoney(req.Amount), req.Method, req.PaymentDate, req.ReceivedBy)
		if err != nil {
			return err
		}
		payment.Reference = req.Reference
		payment.AttachmentURL = req.AttachmentURL

		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		entry := shared.NewAuditEntry("PAYMENT_CREATED", "payment", payment.ID, req.ReceivedBy).
			WithNewValues(map[string]any{
				"payment_number": payment.PaymentNumber,
				"student_id":     payment.StudentID,
				"amount":         payment.Amount,
				"method":         payment.Method,
			})
		return repos.AuditRepo().Log(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("student_id", payment.StudentID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)))
	return payment, nil
}

// CompletePayment transitions a pending payment to completed, assigns the
// receipt number and refreshes the student's advisory cached balance.
func (s *PaymentService) CompletePayment(ctx context.Context, paymentID, actor uuid.UUID) (*finance.Payment, error) {
	var payment *finance.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}

		receipt, err := s.numberGen.Generate(ctx, receiptNumberPrefix, time.Now().Year())
		if err != nil {
			return fmt.Errorf("failed to generate receipt number: %w", err)
		}
		if err := payment.Complete(receipt); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		if err := s.refreshCachedBalance(ctx, repos, payment.StudentID); err != nil {
			return err
		}

		entry := shared.NewAuditEntry("PAYMENT_COMPLETED", "payment", payment.ID, actor).
			WithNewValues(map[string]any{
				"receipt_number": receipt,
				"amount":         payment.Amount,
			})
		return repos.AuditRepo().Log(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment completed",
		zap.String("payment_number", payment.PaymentNumber),
		zap.Stringp("receipt_number", payment.ReceiptNumber))
	return payment, nil
}

// CancelPayment transitions a pending payment to cancelled
func (s *PaymentService) CancelPayment(ctx context.Context, paymentID, actor uuid.UUID) (*finance.Payment, error) {
	var payment *finance.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if err := payment.Cancel(); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		entry := shared.NewAuditEntry("PAYMENT_CANCELLED", "payment", payment.ID, actor).
			WithOldValues(map[string]any{"status": finance.PaymentStatusPending})
		return repos.AuditRepo().Log(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment cancelled", zap.String("payment_number", payment.PaymentNumber))
	return payment, nil
}

// UpdatePayment mutates a pending payment's amount, method, date and proof
// fields
func (s *PaymentService) UpdatePayment(ctx context.Context, paymentID uuid.UUID, req UpdatePaymentRequest) (*finance.Payment, error) {
	var payment *finance.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}

		old := map[string]any{
			"amount": payment.Amount,
			"method": payment.Method,
		}
		if err := payment.Update(valueobject.NewMoney(req.Amount), req.Method, req.PaymentDate, req.Reference, req.AttachmentURL); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		entry := shared.NewAuditEntry("PAYMENT_UPDATED", "payment", payment.ID, req.UpdatedBy).
			WithOldValues(old).
			WithNewValues(map[string]any{
				"amount": payment.Amount,
				"method": payment.Method,
			})
		return repos.AuditRepo().Log(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// GetPayment returns a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*finance.Payment, error) {
	var payment *finance.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments returns a student's payments, newest first
func (s *PaymentService) ListPayments(ctx context.Context, studentID uuid.UUID, filter shared.Filter) ([]finance.Payment, error) {
	var payments []finance.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payments, err = repos.PaymentRepo().FindByStudent(ctx, studentID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// refreshCachedBalance recomputes the student balance from the authoritative
// sums and writes it to the advisory caches. Cache failures are logged, not
// propagated: the cache is a display optimization.
func (s *PaymentService) refreshCachedBalance(ctx context.Context, repos TransactionalRepositories, studentID uuid.UUID) error {
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
