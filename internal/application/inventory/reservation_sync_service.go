package inventory

import (
	"context"
	"errors"
	"fmt"

	appfinance "github.com/dmitriyabr/duma-erp-sub001/internal/application/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/billing"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/inventory"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationSyncService reconciles stock reservations against an invoice's
// paid state. The rule per stocked line: an active reservation exists iff
// the line is fully paid. It runs inside the caller's transaction; any
// failure here must roll back the allocation mutation that triggered it,
// because a reservation without backing payment, or an orphaned hold, is a
// correctness violation for the warehouse.
type ReservationSyncService struct {
	logger *zap.Logger
}

// NewReservationSyncService creates a new ReservationSyncService
func NewReservationSyncService(logger *zap.Logger) *ReservationSyncService {
	return &ReservationSyncService{logger: logger}
}

// SyncForInvoice reconciles reservation existence for every stocked line of
// the invoice after its paid amounts changed
func (s *ReservationSyncService) SyncForInvoice(
	ctx context.Context,
	repos appfinance.TransactionalRepositories,
	invoice *billing.Invoice,
	actor uuid.UUID,
) error {
	for i := range invoice.Lines {
		line := &invoice.Lines[i]
		if !line.IsStocked() {
			continue
		}

		existing, err := repos.ReservationRepo().FindActiveByLine(ctx, line.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("failed to load reservation for line: %w", err)
		}

		switch {
		case line.IsFullyPaid() && existing == nil:
			reservation, err := inventory.NewStockReservation(invoice.ID, line.ID, *line.ItemID, line.Quantity, actor)
			if err != nil {
				return err
			}
			if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
				return fmt.Errorf("failed to create reservation: %w", err)
			}
			s.logger.Debug("stock reserved",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("line_id", line.ID.String()),
				zap.String("item_id", line.ItemID.String()))

		case !line.IsFullyPaid() && existing != nil:
			existing.Release()
			if err := repos.ReservationRepo().Save(ctx, existing); err != nil {
				return fmt.Errorf("failed to release reservation: %w", err)
			}
			s.logger.Debug("stock reservation released",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("line_id", line.ID.String()))
		}
	}
	return nil
}

var _ appfinance.ReservationSyncer = (*ReservationSyncService)(nil)
