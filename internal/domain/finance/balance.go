package finance

import (
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// StudentBalance is the derived credit position of a student. It is
// recomputed fresh from payment and allocation records on every use; any
// cached copy elsewhere is advisory only.
type StudentBalance struct {
	TotalPayments  decimal.Decimal `json:"total_payments"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	Available      decimal.Decimal `json:"available_balance"`
}

// ComputeBalance derives the available balance from the two authoritative
// sums: completed payments in, allocations out.
func ComputeBalance(totalPayments, totalAllocated decimal.Decimal) StudentBalance {
	return StudentBalance{
		TotalPayments:  totalPayments,
		TotalAllocated: totalAllocated,
		Available:      valueobject.RoundMoney(totalPayments.Sub(totalAllocated)),
	}
}
